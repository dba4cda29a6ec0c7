package product

import "github.com/shopspring/decimal"

// Product maps to the `products` table. JSON tags follow the camelCase
// convention used across the API.
type Product struct {
	ID          int             `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Categories  []string        `json:"categories,omitempty"`
	ImageURLs   []string        `json:"imageUrls,omitempty"`
	IsFeatured  bool            `json:"isFeatured"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	UpdatedAt   string          `json:"updatedAt,omitempty"`
}
