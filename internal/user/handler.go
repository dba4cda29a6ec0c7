package user

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type Handler struct {
	service   ServiceInterface
	jwtSecret []byte
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileUpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

func NewHandler(service ServiceInterface, jwtSecret []byte) *Handler {
	return &Handler{service: service, jwtSecret: jwtSecret}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/users/signup", h.signup)
	app.Post("/api/users/login", h.login)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/users/profile", h.getProfile)
	app.Put("/api/users/profile", h.updateProfile)
}

func (h *Handler) signup(c *fiber.Ctx) error {
	payload := new(signupRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing required fields"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := h.service.Register(User{
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		Role:      RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if err == ErrEmailExists {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email is already registered"})
		}
		log.Printf("signup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User created successfully"})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		log.Printf("token signing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{
		"token": signed,
		"user":  sanitizeUser(user),
	})
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	ident, err := IdentityFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	user, err := h.service.GetByID(ident.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	return c.JSON(sanitizeUser(user))
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	ident, err := IdentityFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	payload := new(profileUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	update := User{UpdatedAt: time.Now().UTC().Format(time.RFC3339)}
	if payload.Username != nil {
		update.Username = *payload.Username
	}
	if payload.Email != nil {
		update.Email = *payload.Email
	}

	updated, err := h.service.UpdateProfile(ident.UserID, update)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		case ErrEmailExists:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email is already registered"})
		default:
			log.Printf("profile update failed for user %d: %v", ident.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
		}
	}

	return c.JSON(sanitizeUser(updated))
}

// IdentityFromCtx extracts the caller identity from the JWT stored in
// c.Locals("user") by the auth middleware. Shared by every protected
// handler, so it lives here.
func IdentityFromCtx(c *fiber.Ctx) (Identity, error) {
	u := c.Locals("user")
	if u == nil {
		return Identity{}, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return Identity{}, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fiber.ErrUnauthorized
	}

	ident := Identity{}
	switch v := claims["user_id"].(type) {
	case float64:
		ident.UserID = int(v)
	case int:
		ident.UserID = v
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return Identity{}, fiber.ErrUnauthorized
		}
		ident.UserID = id
	default:
		return Identity{}, fiber.ErrUnauthorized
	}

	if email, ok := claims["email"].(string); ok {
		ident.Email = email
	}
	role, _ := claims["role"].(string)
	ident.Role = ParseRole(role)

	return ident, nil
}

// RequireAdmin guards privileged routes. It assumes the auth middleware
// already ran; an authenticated non-admin gets 403.
func RequireAdmin(c *fiber.Ctx) error {
	ident, err := IdentityFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}
	if !ident.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
	}
	return c.Next()
}

func sanitizeUser(user User) User {
	user.Password = ""
	return user
}
