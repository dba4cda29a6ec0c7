package product

import (
	"log"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/nattawut-k/storefront-backend/internal/storage"
	"github.com/nattawut-k/storefront-backend/internal/user"
)

const maxImagesPerProduct = 5

type Handler struct {
	service ServiceInterface
	store   storage.Store
}

func NewHandler(service ServiceInterface, store storage.Store) *Handler {
	return &Handler{service: service, store: store}
}

// RegisterProtectedRoutes mounts catalog routes behind the auth gate.
// Update and delete additionally require the admin role.
func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/products", h.list)
	app.Get("/api/products/:id", h.get)
	app.Post("/api/products", h.create)
	app.Put("/api/products/:id", user.RequireAdmin, h.update)
	app.Delete("/api/products/:id", user.RequireAdmin, h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}

	return c.JSON(p)
}

func (h *Handler) create(c *fiber.Ctx) error {
	p, err := h.parseForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	files := formImages(c)
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No images uploaded"})
	}

	urls, err := h.saveImages(files)
	if err != nil {
		log.Printf("image upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	p.ImageURLs = urls

	now := time.Now().UTC().Format(time.RFC3339)
	p.CreatedAt = now
	p.UpdatedAt = now

	created, err := h.service.Create(p)
	if err != nil {
		if err == ErrInvalid {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name, description and a positive price are required"})
		}
		log.Printf("product create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created successfully", "product": created})
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	existing, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}

	p, err := h.parseForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// new images replace the old set; without any the current set stays
	if files := formImages(c); len(files) > 0 {
		urls, err := h.saveImages(files)
		if err != nil {
			log.Printf("image upload failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
		}
		p.ImageURLs = urls
	} else {
		p.ImageURLs = existing.ImageURLs
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	updated, err := h.service.Update(id, p)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		case ErrInvalid:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name, description and a positive price are required"})
		default:
			log.Printf("product update failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
		}
	}

	return c.JSON(updated)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	if err := h.service.Delete(id); err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}
		log.Printf("product delete failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// parseForm reads the product fields from either a multipart form or a
// JSON body; image files are handled separately.
func (h *Handler) parseForm(c *fiber.Ctx) (Product, error) {
	ct := c.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		price, err := decimal.NewFromString(c.FormValue("price"))
		if err != nil {
			return Product{}, fiber.NewError(fiber.StatusBadRequest, "invalid price")
		}
		p := Product{
			Name:        c.FormValue("name"),
			Description: c.FormValue("description"),
			Price:       price,
			IsFeatured:  c.FormValue("isFeatured") == "true",
		}
		if raw := c.FormValue("categories"); raw != "" {
			for _, cat := range strings.Split(raw, ",") {
				if cat = strings.TrimSpace(cat); cat != "" {
					p.Categories = append(p.Categories, cat)
				}
			}
		}
		return p, nil
	}

	var p Product
	if err := c.BodyParser(&p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func formImages(c *fiber.Ctx) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	files := form.File["images"]
	if len(files) > maxImagesPerProduct {
		files = files[:maxImagesPerProduct]
	}
	return files
}

func (h *Handler) saveImages(files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		url, err := h.store.Save(file.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
