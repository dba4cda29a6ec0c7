package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Status is the terminal state the gateway reports for a capture attempt.
type Status string

const (
	StatusSucceeded      Status = "succeeded"
	StatusFailed         Status = "failed"
	StatusRequiresAction Status = "requires_action"
)

var (
	// ErrGatewayTimeout means the capture call did not complete within its
	// deadline. The charge outcome is unknown; callers must not retry
	// automatically since a retry could double-charge.
	ErrGatewayTimeout = errors.New("payment gateway timeout")
)

// Intent is the gateway's record of one capture attempt.
type Intent struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// Gateway captures funds for an amount against a payment method reference.
// Exactly one capture attempt per call, no retries.
type Gateway interface {
	Capture(ctx context.Context, amount decimal.Decimal, currency, paymentMethod string) (Intent, error)
}
