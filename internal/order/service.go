package order

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/nattawut-k/storefront-backend/internal/payment"
	"github.com/nattawut-k/storefront-backend/internal/product"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrPaymentFailed means the gateway reached a terminal state other
	// than succeeded. No order row exists for such an attempt.
	ErrPaymentFailed = errors.New("payment failed")
)

const captureCurrency = "usd"

// Service orchestrates order creation: price lookup, payment capture and
// persistence. An order row always implies the gateway confirmed the
// capture at creation time.
type Service struct {
	repo           Repository
	products       product.ServiceInterface
	gateway        payment.Gateway
	captureTimeout time.Duration
}

func NewService(repo Repository, products product.ServiceInterface, gateway payment.Gateway, captureTimeout time.Duration) *Service {
	return &Service{
		repo:           repo,
		products:       products,
		gateway:        gateway,
		captureTimeout: captureTimeout,
	}
}

// Create places one order. The product price is snapshotted into
// TotalAmount before the capture, so a concurrent price change never
// alters what this order charged. Exactly one capture call is made; on
// anything but a confirmed capture nothing is persisted and the caller
// must initiate a new attempt.
func (s *Service) Create(ctx context.Context, userID, productID int, paymentMethod string) (Order, error) {
	prod, err := s.products.GetByID(productID)
	if err != nil {
		if err == product.ErrNotFound {
			return Order{}, ErrProductNotFound
		}
		return Order{}, err
	}

	totalAmount := prod.Price

	captureCtx, cancel := context.WithTimeout(ctx, s.captureTimeout)
	defer cancel()

	intent, err := s.gateway.Capture(captureCtx, totalAmount, captureCurrency, paymentMethod)
	if err != nil {
		if errors.Is(err, payment.ErrGatewayTimeout) {
			return Order{}, payment.ErrGatewayTimeout
		}
		log.Printf("capture failed for product %d: %v", productID, err)
		return Order{}, ErrPaymentFailed
	}
	if intent.Status != payment.StatusSucceeded {
		return Order{}, ErrPaymentFailed
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return s.repo.Create(Order{
		UserID:          userID,
		ProductID:       productID,
		TotalAmount:     totalAmount,
		Status:          StatusProcessed,
		PaymentIntentID: intent.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

// ListByUser returns the caller's orders only.
func (s *Service) ListByUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

// Transition moves an order to target if the transition table allows it.
func (s *Service) Transition(orderID int, target Status) (Order, error) {
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}

	if !CanTransition(ord.Status, target) {
		return Order{}, ErrInvalidTransition
	}

	return s.repo.UpdateStatus(orderID, target, time.Now().UTC().Format(time.RFC3339))
}

// Delete removes an order permanently. No soft delete, no audit trail.
func (s *Service) Delete(orderID int) error {
	return s.repo.Delete(orderID)
}
