package order

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("order not found")

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ord Order) (Order, error)
	GetByID(id int) (Order, error)
	ListByUser(userID int) ([]Order, error)
	UpdateStatus(id int, status Status, updatedAt string) (Order, error)
	Delete(id int) error
}

// InMemoryRepository backs workflow tests without Postgres.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders []Order
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ord.ID == 0 {
		ord.ID = r.nextID
		r.nextID++
	}
	r.orders = append(r.orders, ord)
	return ord, nil
}

func (r *InMemoryRepository) GetByID(id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ord := range r.orders {
		if ord.ID == id {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, ord := range r.orders {
		if ord.UserID == userID {
			out = append(out, ord)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(id int, status Status, updatedAt string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].Status = status
			r.orders[i].UpdatedAt = updatedAt
			return r.orders[i], nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Len reports the number of stored orders. Tests use it to assert that
// failed captures leave no rows behind.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
