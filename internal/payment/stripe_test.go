package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCapture_Succeeded(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = map[string]string{
			"amount":         r.PostFormValue("amount"),
			"currency":       r.PostFormValue("currency"),
			"payment_method": r.PostFormValue("payment_method"),
			"confirm":        r.PostFormValue("confirm"),
			"auth":           r.Header.Get("Authorization"),
		}
		w.Write([]byte(`{"id":"pi_123","status":"succeeded"}`))
	}))
	defer srv.Close()

	g := NewStripeGatewayWithBaseURL("sk_test", srv.URL)
	intent, err := g.Capture(context.Background(), decimal.RequireFromString("20.00"), "usd", "pm_card")

	assert.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, StatusSucceeded, intent.Status)
	// 20.00 is sent as 2000 minor units
	assert.Equal(t, "2000", gotForm["amount"])
	assert.Equal(t, "usd", gotForm["currency"])
	assert.Equal(t, "pm_card", gotForm["payment_method"])
	assert.Equal(t, "true", gotForm["confirm"])
	assert.Equal(t, "Bearer sk_test", gotForm["auth"])
}

func TestCapture_DeclineIsTerminalNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined.","code":"card_declined"}}`))
	}))
	defer srv.Close()

	g := NewStripeGatewayWithBaseURL("sk_test", srv.URL)
	intent, err := g.Capture(context.Background(), decimal.RequireFromString("9.99"), "usd", "pm_card")

	assert.NoError(t, err)
	assert.Equal(t, StatusFailed, intent.Status)
}

func TestCapture_RequiresAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"pi_456","status":"requires_action"}`))
	}))
	defer srv.Close()

	g := NewStripeGatewayWithBaseURL("sk_test", srv.URL)
	intent, err := g.Capture(context.Background(), decimal.RequireFromString("5"), "usd", "pm_card")

	assert.NoError(t, err)
	assert.Equal(t, StatusRequiresAction, intent.Status)
}

func TestCapture_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"id":"pi_slow","status":"succeeded"}`))
	}))
	defer srv.Close()

	g := NewStripeGatewayWithBaseURL("sk_test", srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.Capture(ctx, decimal.RequireFromString("5"), "usd", "pm_card")
	assert.ErrorIs(t, err, ErrGatewayTimeout)
}

func TestCapture_TimeoutAfterHeaders(t *testing.T) {
	// headers arrive in time but the body stalls past the deadline; the
	// outcome is unknown, so this must not look like a decline
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"id":"pi_slow","status":"succeeded"}`))
	}))
	defer srv.Close()

	g := NewStripeGatewayWithBaseURL("sk_test", srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.Capture(ctx, decimal.RequireFromString("5"), "usd", "pm_card")
	assert.ErrorIs(t, err, ErrGatewayTimeout)
}
