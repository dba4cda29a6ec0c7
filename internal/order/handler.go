package order

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nattawut-k/storefront-backend/internal/payment"
	"github.com/nattawut-k/storefront-backend/internal/user"
)

type Handler struct {
	service     *Service
	userService user.ServiceInterface
}

func NewHandler(service *Service, userService user.ServiceInterface) *Handler {
	return &Handler{service: service, userService: userService}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/orders", h.createOrder)
	app.Get("/api/orders/myorders", h.myOrders)
	app.Put("/api/orders/:id/paid", user.RequireAdmin, h.markPaid)
	app.Put("/api/orders/:id/shipped", user.RequireAdmin, h.markShipped)
	app.Put("/api/orders/:id/delivered", user.RequireAdmin, h.markDelivered)
	app.Delete("/api/orders/:id", user.RequireAdmin, h.deleteOrder)
}

type createOrderRequest struct {
	ProductID     int    `json:"productId"`
	PaymentMethod string `json:"paymentMethod"`
	ReturnURL     string `json:"returnUrl"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	ident, err := user.IdentityFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 || payload.PaymentMethod == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "productId and paymentMethod are required"})
	}

	created, err := h.service.Create(c.UserContext(), ident.UserID, payload.ProductID, payload.PaymentMethod)
	if err != nil {
		switch err {
		case ErrProductNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		case ErrPaymentFailed:
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"message": "Payment failed"})
		case payment.ErrGatewayTimeout:
			return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"message": "Payment gateway timeout"})
		default:
			log.Printf("order create failed for user %d: %v", ident.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
		}
	}

	if err := h.userService.AppendOrderID(ident.UserID, created.ID); err != nil {
		log.Printf("warning: could not append order %d to user %d: %v", created.ID, ident.UserID, err)
	}

	if payload.ReturnURL != "" {
		return c.Redirect(payload.ReturnURL, fiber.StatusSeeOther)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) myOrders(c *fiber.Ctx) error {
	ident, err := user.IdentityFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	orders, err := h.service.ListByUser(ident.UserID)
	if err != nil {
		log.Printf("order list failed for user %d: %v", ident.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	return c.JSON(orders)
}

func (h *Handler) markPaid(c *fiber.Ctx) error {
	return h.transition(c, StatusPaid, "Order marked as paid")
}

func (h *Handler) markShipped(c *fiber.Ctx) error {
	return h.transition(c, StatusShipped, "Order marked as shipped")
}

func (h *Handler) markDelivered(c *fiber.Ctx) error {
	return h.transition(c, StatusDelivered, "Order marked as delivered")
}

func (h *Handler) transition(c *fiber.Ctx, target Status, message string) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	ord, err := h.service.Transition(id, target)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		case ErrInvalidTransition:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "invalid status transition"})
		default:
			log.Printf("order transition failed for order %d: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
		}
	}

	return c.JSON(fiber.Map{"message": message, "order": ord})
}

func (h *Handler) deleteOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	if err := h.service.Delete(id); err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		}
		log.Printf("order delete failed for order %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"message": "Order deleted successfully"})
}
