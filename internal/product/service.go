package product

import "errors"

// ErrInvalid marks a product payload that fails validation.
var ErrInvalid = errors.New("invalid product")

// ServiceInterface is consumed by the order workflow for price lookups.
type ServiceInterface interface {
	List() []Product
	GetByID(id int) (Product, error)
	Create(p Product) (Product, error)
	Update(id int, p Product) (Product, error)
	Delete(id int) error
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() []Product {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(p Product) (Product, error) {
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

func validate(p Product) error {
	if p.Name == "" || p.Description == "" {
		return ErrInvalid
	}
	if !p.Price.IsPositive() {
		return ErrInvalid
	}
	// prices carry at most two decimal places; anything finer would not
	// survive the gateway's minor-unit conversion
	if !p.Price.Equal(p.Price.Round(2)) {
		return ErrInvalid
	}
	return nil
}
