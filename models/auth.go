package models

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type User struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre,omitempty"`
	Email  string `json:"email,omitempty"`
	Rol    string `json:"rol,omitempty"`
}

// LoginResult is what /auth/authenticate returned. The backend answers either a
// JSON session payload or plain text; plain text lands in Message.
type LoginResult struct {
	User        *User  `json:"user,omitempty"`
	Token       string `json:"token,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
	Success     bool   `json:"success,omitempty"`
	Message     string `json:"message,omitempty"`
}

// BearerToken returns whichever token field the payload used.
func (r LoginResult) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}
