package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SolicitorStatusActive    = "active"
	SolicitorStatusInactive  = "inactive"
	SolicitorStatusSuspended = "suspended"
)

var SolicitorStatuses = []string{
	SolicitorStatusActive,
	SolicitorStatusInactive,
	SolicitorStatusSuspended,
}

func ValidSolicitorStatus(s string) bool {
	for _, v := range SolicitorStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Solicitor is a fundraiser credited with bonuses on payments they brought in.
// A solicitor is always backed by a contact row.
type Solicitor struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	ContactID      uint             `gorm:"uniqueIndex;not null" json:"contactId"`
	Code           string           `gorm:"size:16;index" json:"code"`
	CommissionRate *decimal.Decimal `gorm:"type:decimal(5,2)" json:"commissionRate"` // percent
	HireDate       *time.Time       `json:"hireDate"`
	Status         string           `gorm:"size:16;index;not null;default:active" json:"status"`
	Notes          string           `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`

	Contact Contact `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
