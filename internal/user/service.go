package user

import "golang.org/x/crypto/bcrypt"

// ServiceInterface lets other packages (orders) depend on user operations
// without the concrete service, so tests can substitute a stub.
type ServiceInterface interface {
	GetByID(id int) (User, error)
	Register(user User) (User, error)
	Authenticate(email, password string) (User, error)
	UpdateProfile(id int, update User) (User, error)
	AppendOrderID(userID, orderID int) error
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int) (User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Register(user User) (User, error) {
	if _, err := s.repo.GetByEmail(user.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user.Password = string(hashed)
	if user.Role == "" {
		user.Role = RoleCustomer
	}
	return s.repo.Create(user)
}

func (s *Service) Authenticate(email, password string) (User, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// UpdateProfile changes the mutable profile fields only; role and
// password are never touched through this path.
func (s *Service) UpdateProfile(id int, update User) (User, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return User{}, err
	}

	if update.Username != "" {
		existing.Username = update.Username
	}
	if update.Email != "" && update.Email != existing.Email {
		if other, err := s.repo.GetByEmail(update.Email); err == nil && other.ID != id {
			return User{}, ErrEmailExists
		} else if err != nil && err != ErrNotFound {
			return User{}, err
		}
		existing.Email = update.Email
	}
	existing.UpdatedAt = update.UpdatedAt
	existing.Password = ""

	return s.repo.Update(id, existing)
}

func (s *Service) AppendOrderID(userID, orderID int) error {
	return s.repo.AppendOrderID(userID, orderID)
}
