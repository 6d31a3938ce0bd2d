package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

// Tables owned by the gateway. Catalog and order data stay in the backend.
var tables = []interface{}{
	&models.CashCount{},
	&models.AuditEntry{},
}

// Migrate creates or updates the local tables and checks they exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, t := range tables {
		if !db.Migrator().HasTable(t) {
			return fmt.Errorf("table for %T missing after migrate", t)
		}
		utils.Info().WithField("model", fmt.Sprintf("%T", t)).Info("table verified")
	}

	// Older installs stored counts without a user.
	if err := db.Model(&models.CashCount{}).Where("usuario IS NULL").Update("usuario", "").Error; err != nil {
		utils.Error().WithError(err).Error("backfilling cash count usuario")
	}

	utils.Info().Info("AutoMigrate completed.")
	return nil
}
