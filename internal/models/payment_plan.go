package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusCancelled = "cancelled"
	PlanStatusPaused    = "paused"
)

var PlanStatuses = []string{
	PlanStatusActive,
	PlanStatusCompleted,
	PlanStatusCancelled,
	PlanStatusPaused,
}

func ValidPlanStatus(s string) bool {
	for _, v := range PlanStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PlanFrequencies lists accepted installment frequencies.
var PlanFrequencies = []string{"weekly", "monthly", "quarterly", "biannual", "annual"}

func ValidPlanFrequency(s string) bool {
	for _, v := range PlanFrequencies {
		if v == s {
			return true
		}
	}
	return false
}

// PaymentPlan schedules installments against a pledge.
type PaymentPlan struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PledgeID uint `gorm:"index;not null" json:"pledgeId"`

	TotalPlannedAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPlannedAmount"`
	Currency             string          `gorm:"size:3;not null;default:USD" json:"currency"`
	InstallmentAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"installmentAmount"`
	NumberOfInstallments int             `gorm:"not null" json:"numberOfInstallments"`
	Frequency            string          `gorm:"size:16;not null" json:"frequency"`

	StartDate       time.Time  `gorm:"index;not null" json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	NextPaymentDate *time.Time `gorm:"index" json:"nextPaymentDate"`

	InstallmentsPaid int             `gorm:"not null;default:0" json:"installmentsPaid"`
	TotalPaid        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalPaid"`

	Status    string    `gorm:"size:16;index;not null;default:active" json:"status"`
	AutoRenew bool      `gorm:"not null;default:false" json:"autoRenew"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Pledge Pledge `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
