package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// StripeGateway confirms payment intents against the Stripe API.
type StripeGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{
		secretKey: secretKey,
		baseURL:   defaultStripeBaseURL,
		client:    &http.Client{},
	}
}

// NewStripeGatewayWithBaseURL points the client at a different API host.
// Used by tests to capture requests with httptest.
func NewStripeGatewayWithBaseURL(secretKey, baseURL string) *StripeGateway {
	g := NewStripeGateway(secretKey)
	g.baseURL = baseURL
	return g
}

type stripeError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type paymentIntentResponse struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Error  *stripeError `json:"error"`
}

func (g *StripeGateway) Capture(ctx context.Context, amount decimal.Decimal, currency, paymentMethod string) (Intent, error) {
	form := url.Values{}
	// Stripe amounts are integer minor units (cents for usd).
	form.Set("amount", strconv.FormatInt(amount.Shift(2).IntPart(), 10))
	form.Set("currency", currency)
	form.Set("payment_method", paymentMethod)
	form.Set("confirm", "true")
	form.Add("payment_method_types[]", "card")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return Intent{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Intent{}, ErrGatewayTimeout
		}
		return Intent{}, fmt.Errorf("payment gateway request: %w", err)
	}
	defer resp.Body.Close()

	var body paymentIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		// the deadline can also expire mid-body, after headers arrived;
		// the outcome is just as unknown as a connect timeout
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return Intent{}, ErrGatewayTimeout
		}
		return Intent{}, fmt.Errorf("decode gateway response: %w", err)
	}

	// card declines come back as an error payload; report them as a
	// terminal failed intent rather than a transport error
	if body.Error != nil {
		return Intent{Status: StatusFailed}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Intent{}, fmt.Errorf("payment gateway status %d", resp.StatusCode)
	}

	return Intent{ID: body.ID, Status: Status(body.Status)}, nil
}
