package models

import "time"

// AuditEntry records one admin action taken through the gateway.
type AuditEntry struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Action     string    `gorm:"type:varchar(50);not null;index:idx_audit_action" json:"action"`
	Resource   string    `gorm:"type:varchar(50);not null;index:idx_audit_action" json:"resource"`
	ResourceID string    `gorm:"type:varchar(64)" json:"resourceId,omitempty"`
	Detail     string    `gorm:"type:text" json:"detail,omitempty"`
	Success    bool      `gorm:"not null" json:"success"`
	CreatedAt  time.Time `gorm:"not null;index" json:"createdAt"`
}
