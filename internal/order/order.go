package order

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. Transitions are forward-only and
// single-step: processed -> paid -> shipped -> delivered.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

// ErrInvalidTransition rejects out-of-order or backward status changes.
var ErrInvalidTransition = errors.New("invalid status transition")

// next holds the single allowed successor for each state. Delivered is
// terminal.
var next = map[Status]Status{
	StatusProcessed: StatusPaid,
	StatusPaid:      StatusShipped,
	StatusShipped:   StatusDelivered,
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusProcessed, StatusPaid, StatusShipped, StatusDelivered:
		return Status(raw), true
	}
	return "", false
}

// CanTransition reports whether to is the direct successor of from.
func CanTransition(from, to Status) bool {
	return next[from] == to
}

// Order represents one purchase attempt and its outcome. TotalAmount is
// a snapshot of the product price at creation time and never changes
// afterwards, even if the product price does.
type Order struct {
	ID              int             `json:"orderId"`
	UserID          int             `json:"userId"`
	ProductID       int             `json:"productId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
}
