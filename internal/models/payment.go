package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses form a closed set; filters over them are validated strictly.
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
	PaymentStatusCancelled  = "cancelled"
	PaymentStatusRefunded   = "refunded"
)

// PaymentStatuses lists every accepted payment status value.
var PaymentStatuses = []string{
	PaymentStatusPending,
	PaymentStatusProcessing,
	PaymentStatusCompleted,
	PaymentStatusFailed,
	PaymentStatusCancelled,
	PaymentStatusRefunded,
}

// ValidPaymentStatus reports whether s is a member of the status enum.
func ValidPaymentStatus(s string) bool {
	for _, v := range PaymentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Payment is a recorded transfer against a pledge.
type Payment struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PledgeID uint `gorm:"index;not null" json:"pledgeId"`

	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency  string          `gorm:"size:3;not null;default:USD" json:"currency"`
	AmountUSD decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amountUsd"`

	PaymentDate   time.Time  `gorm:"index;not null" json:"paymentDate"`
	ReceivedDate  *time.Time `gorm:"index" json:"receivedDate"`
	PaymentMethod string     `gorm:"size:32;not null" json:"paymentMethod"`
	Status        string     `gorm:"size:16;index;not null;default:pending" json:"status"`

	ReferenceNumber string `gorm:"size:64" json:"referenceNumber"`
	CheckNumber     string `gorm:"size:64" json:"checkNumber"`
	ReceiptNumber   string `gorm:"size:64" json:"receiptNumber"`

	// set while a solicitor is credited for this payment
	SolicitorID     *uint            `gorm:"index" json:"solicitorId"`
	BonusPercentage *decimal.Decimal `gorm:"type:decimal(5,2)" json:"bonusPercentage"`
	BonusAmount     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"bonusAmount"`

	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Pledge    Pledge     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Solicitor *Solicitor `gorm:"constraint:OnDelete:SET NULL" json:"solicitor,omitempty"`
}
