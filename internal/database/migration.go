package database

import (
	"fmt"

	"github.com/expertdev121/givesuite-sub003/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Contact{},
		&models.Category{},
		&models.Pledge{},
		&models.Payment{},
		&models.PaymentPlan{},
		&models.Solicitor{},
		&models.BonusCalculation{},
		&models.Relationship{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
