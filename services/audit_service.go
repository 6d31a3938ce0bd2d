package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

// Audit actions
const (
	AuditReorder    = "reorder"
	AuditToggle     = "toggle"
	AuditTransition = "transition"
	AuditCreate     = "create"
	AuditUpdate     = "update"
	AuditDelete     = "delete"
	AuditCashCount  = "cash_count"
)

// AuditService keeps a local trail of the admin actions taken through the
// gateway. A nil DB disables it.
type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

// Record stores one entry. Failures are logged, never returned: the action
// itself already happened.
func (s *AuditService) Record(ctx context.Context, action, resource, resourceID, detail string, success bool) {
	if s == nil || s.DB == nil {
		return
	}
	entry := models.AuditEntry{
		ID:         uuid.New().String(),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Detail:     detail,
		Success:    success,
		CreatedAt:  time.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		utils.Error().WithError(err).WithField("action", action).Error("audit entry not saved")
	}
}

// Recent returns the newest entries, optionally for one resource.
func (s *AuditService) Recent(ctx context.Context, resource string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.DB.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if resource != "" {
		q = q.Where("resource = ?", resource)
	}
	var entries []models.AuditEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
