package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewReceiptNumber generates a receipt identifier for a payment that was
// recorded without one.
func NewReceiptNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "RCPT-" + id[:12]
}
