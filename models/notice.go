package models

import "time"

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a toast shown to staff. It disappears at ExpiresAt.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// NoticeTTL is how long a toast stays on screen.
var NoticeTTL = 3 * time.Second

func NewNotice(kind NoticeKind, message string) Notice {
	return Notice{Kind: kind, Message: message, ExpiresAt: time.Now().Add(NoticeTTL)}
}

func SuccessNotice(message string) Notice { return NewNotice(NoticeSuccess, message) }

func ErrorNotice(message string) Notice { return NewNotice(NoticeError, message) }
