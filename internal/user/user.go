package user

// Role is the closed set of authorization roles a user can hold.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a raw string onto the closed role set. Anything that is
// not exactly an admin role is an ordinary customer.
func ParseRole(raw string) Role {
	if raw == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleCustomer
}

type User struct {
	ID       int    `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`

	OrderIDs  []int  `json:"orderIds,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Identity is the authenticated caller derived from a verified token.
type Identity struct {
	UserID int
	Email  string
	Role   Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
