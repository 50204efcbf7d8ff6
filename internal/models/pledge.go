package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pledge is a donor's committed obligation. Amounts are stored both in the
// pledged currency and normalized to the reporting currency (USD).
// Invariant kept by the payment write paths: Balance = OriginalAmount - TotalPaid
// in both currencies. Paid status (unpaid / partiallyPaid / fullyPaid) is
// derived from TotalPaid and Balance, never stored.
type Pledge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ContactID   uint      `gorm:"index;not null" json:"contactId"`
	CategoryID  *uint     `gorm:"index" json:"categoryId"`
	PledgeDate  time.Time `gorm:"index;not null" json:"pledgeDate"`
	Description string    `gorm:"size:255" json:"description"`

	OriginalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"originalAmount"`
	Currency          string          `gorm:"size:3;not null;default:USD" json:"currency"`
	OriginalAmountUSD decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"originalAmountUsd"`
	TotalPaid         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalPaid"`
	TotalPaidUSD      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalPaidUsd"`
	Balance           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance"`
	BalanceUSD        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balanceUsd"`

	Active    bool      `gorm:"index;not null;default:true" json:"active"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Contact  Contact   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
}
