package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BonusCalculation credits a solicitor for one payment. It is created when a
// solicitor is attached to a payment and deleted when the solicitor is
// unassigned; the two always change together inside one transaction.
type BonusCalculation struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	PaymentID   uint `gorm:"uniqueIndex;not null" json:"paymentId"`
	SolicitorID uint `gorm:"index;not null" json:"solicitorId"`

	BonusPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"bonusPercentage"`
	BonusAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"bonusAmount"`

	Paid      bool       `gorm:"index;not null;default:false" json:"paid"`
	PaidAt    *time.Time `json:"paidAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Payment   Payment   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Solicitor Solicitor `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
