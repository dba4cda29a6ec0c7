package order

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/nattawut-k/storefront-backend/internal/payment"
	"github.com/nattawut-k/storefront-backend/internal/product"
	"github.com/nattawut-k/storefront-backend/internal/user"
)

type stubUserService struct {
	appended []int
}

func (s *stubUserService) GetByID(id int) (user.User, error) { return user.User{ID: id}, nil }
func (s *stubUserService) Register(u user.User) (user.User, error) {
	return u, nil
}
func (s *stubUserService) Authenticate(email, password string) (user.User, error) {
	return user.User{Email: email}, nil
}
func (s *stubUserService) UpdateProfile(id int, u user.User) (user.User, error) {
	return u, nil
}
func (s *stubUserService) AppendOrderID(userID, orderID int) error {
	s.appended = append(s.appended, orderID)
	return nil
}

var _ user.ServiceInterface = (*stubUserService)(nil)

// authAs installs a middleware that plants a decoded token the way the
// jwtware gate does in production.
func authAs(app *fiber.App, userID int, role user.Role) {
	app.Use(func(c *fiber.Ctx) error {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": float64(userID),
			"email":   "test@example.com",
			"role":    string(role),
		})
		c.Locals("user", tok)
		return c.Next()
	})
}

type testEnv struct {
	app  *fiber.App
	repo *InMemoryRepository
	gw   *fakeGateway
}

func setupApp(t *testing.T, userID int, role user.Role, gw *fakeGateway) testEnv {
	t.Helper()

	repo := NewInMemoryRepository()
	products := product.NewService(product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Collar", Description: "red", Price: decimal.RequireFromString("20.00")},
	}))
	svc := NewService(repo, products, gw, time.Second)
	h := NewHandler(svc, &stubUserService{})

	app := fiber.New()
	if userID > 0 {
		authAs(app, userID, role)
	}
	h.RegisterProtectedRoutes(app)

	return testEnv{app: app, repo: repo, gw: gw}
}

func TestCreateOrder_Success(t *testing.T) {
	env := setupApp(t, 7, user.RoleCustomer, &fakeGateway{intent: payment.Intent{ID: "pi_1", Status: payment.StatusSucceeded}})

	b, _ := json.Marshal(map[string]any{"productId": 1, "paymentMethod": "pm_card"})
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)

	var ord Order
	json.NewDecoder(res.Body).Decode(&ord)
	assert.Equal(t, 7, ord.UserID)
	assert.True(t, ord.TotalAmount.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, StatusProcessed, ord.Status)
}

func TestCreateOrder_RedirectsToReturnURL(t *testing.T) {
	env := setupApp(t, 7, user.RoleCustomer, &fakeGateway{intent: payment.Intent{ID: "pi_1", Status: payment.StatusSucceeded}})

	b, _ := json.Marshal(map[string]any{"productId": 1, "paymentMethod": "pm_card", "returnUrl": "https://shop.example/thanks"})
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "https://shop.example/thanks", res.Header.Get("Location"))
	assert.Equal(t, 1, env.repo.Len(), "order persisted before the redirect")
}

func TestCreateOrder_PaymentFailed(t *testing.T) {
	env := setupApp(t, 7, user.RoleCustomer, &fakeGateway{intent: payment.Intent{Status: payment.StatusFailed}})

	b, _ := json.Marshal(map[string]any{"productId": 1, "paymentMethod": "pm_card"})
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, res.StatusCode)
	assert.Equal(t, 0, env.repo.Len())
}

func TestCreateOrder_GatewayTimeout(t *testing.T) {
	env := setupApp(t, 7, user.RoleCustomer, &fakeGateway{err: payment.ErrGatewayTimeout})

	b, _ := json.Marshal(map[string]any{"productId": 1, "paymentMethod": "pm_card"})
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusGatewayTimeout, res.StatusCode)
	assert.Equal(t, 0, env.repo.Len())
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	env := setupApp(t, 7, user.RoleCustomer, &fakeGateway{intent: payment.Intent{Status: payment.StatusSucceeded}})

	b, _ := json.Marshal(map[string]any{"productId": 42, "paymentMethod": "pm_card"})
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestCreateOrder_MissingFields(t *testing.T) {
	env := setupApp(t, 7, user.RoleCustomer, &fakeGateway{})

	b, _ := json.Marshal(map[string]any{"productId": 1})
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestCreateOrder_Unauthenticated(t *testing.T) {
	// no auth middleware installed: no token in locals
	env := setupApp(t, 0, user.RoleCustomer, &fakeGateway{})

	b, _ := json.Marshal(map[string]any{"productId": 1, "paymentMethod": "pm_card"})
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestMyOrders_ScopedToCaller(t *testing.T) {
	env := setupApp(t, 7, user.RoleCustomer, &fakeGateway{})
	env.repo.Create(Order{UserID: 7, ProductID: 1, TotalAmount: decimal.RequireFromString("20.00"), Status: StatusProcessed})
	env.repo.Create(Order{UserID: 8, ProductID: 1, TotalAmount: decimal.RequireFromString("20.00"), Status: StatusProcessed})

	req := httptest.NewRequest("GET", "/api/orders/myorders", nil)
	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	var orders []Order
	json.NewDecoder(res.Body).Decode(&orders)
	assert.Len(t, orders, 1)
	assert.Equal(t, 7, orders[0].UserID)
}

func TestTransition_ForbiddenForNonAdmin(t *testing.T) {
	env := setupApp(t, 7, user.RoleCustomer, &fakeGateway{})
	created, _ := env.repo.Create(Order{UserID: 7, ProductID: 1, TotalAmount: decimal.RequireFromString("20.00"), Status: StatusProcessed})

	req := httptest.NewRequest("PUT", "/api/orders/1/shipped", nil)
	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	stored, _ := env.repo.GetByID(created.ID)
	assert.Equal(t, StatusProcessed, stored.Status, "forbidden call must not mutate")
}

func TestDelete_ForbiddenForNonAdmin(t *testing.T) {
	env := setupApp(t, 7, user.RoleCustomer, &fakeGateway{})
	env.repo.Create(Order{UserID: 7, ProductID: 1, TotalAmount: decimal.RequireFromString("20.00"), Status: StatusProcessed})

	req := httptest.NewRequest("DELETE", "/api/orders/1", nil)
	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	assert.Equal(t, 1, env.repo.Len())
}

func TestTransition_AdminChain(t *testing.T) {
	env := setupApp(t, 1, user.RoleAdmin, &fakeGateway{})
	env.repo.Create(Order{UserID: 7, ProductID: 1, TotalAmount: decimal.RequireFromString("20.00"), Status: StatusProcessed})

	for _, step := range []string{"paid", "shipped", "delivered"} {
		req := httptest.NewRequest("PUT", "/api/orders/1/"+step, nil)
		res, err := env.app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode, "step %s", step)
	}

	stored, _ := env.repo.GetByID(1)
	assert.Equal(t, StatusDelivered, stored.Status)
}

func TestTransition_AdminOutOfOrderConflict(t *testing.T) {
	env := setupApp(t, 1, user.RoleAdmin, &fakeGateway{})
	env.repo.Create(Order{UserID: 7, ProductID: 1, TotalAmount: decimal.RequireFromString("20.00"), Status: StatusProcessed})

	req := httptest.NewRequest("PUT", "/api/orders/1/delivered", nil)
	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)
}

func TestTransition_AdminUnknownOrder(t *testing.T) {
	env := setupApp(t, 1, user.RoleAdmin, &fakeGateway{})

	req := httptest.NewRequest("PUT", "/api/orders/99/shipped", nil)
	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestDelete_Admin(t *testing.T) {
	env := setupApp(t, 1, user.RoleAdmin, &fakeGateway{})
	env.repo.Create(Order{UserID: 7, ProductID: 1, TotalAmount: decimal.RequireFromString("20.00"), Status: StatusProcessed})

	req := httptest.NewRequest("DELETE", "/api/orders/1", nil)
	res, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, 0, env.repo.Len())

	req = httptest.NewRequest("DELETE", "/api/orders/1", nil)
	res, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}
