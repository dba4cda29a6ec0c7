package product

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	listProductsQuery = `
		SELECT product_id, name, description, price, categories, image_urls, is_featured, created_at, updated_at
		FROM products
		ORDER BY product_id
	`
	getProductByIDQuery = `
		SELECT product_id, name, description, price, categories, image_urls, is_featured, created_at, updated_at
		FROM products
		WHERE product_id = $1
	`
	insertProductQuery = `
		INSERT INTO products (name, description, price, categories, image_urls, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING product_id
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1,
			description = $2,
			price = $3,
			categories = $4,
			image_urls = $5,
			is_featured = $6,
			updated_at = $7
		WHERE product_id = $8
	`
	deleteProductQuery = `DELETE FROM products WHERE product_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() []Product {
	rows, err := r.db.Query(listProductsQuery)
	if err != nil {
		return []Product{}
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			continue
		}
		products = append(products, p)
	}

	return products
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	var id int
	err := r.db.QueryRow(
		insertProductQuery,
		p.Name,
		p.Description,
		p.Price.String(),
		pq.Array(p.Categories),
		pq.Array(p.ImageURLs),
		p.IsFeatured,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return Product{}, err
	}

	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	result, err := r.db.Exec(
		updateProductQuery,
		p.Name,
		p.Description,
		p.Price.String(),
		pq.Array(p.Categories),
		pq.Array(p.ImageURLs),
		p.IsFeatured,
		p.UpdatedAt,
		id,
	)
	if err != nil {
		return Product{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, err
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	var price string
	var categories, imageURLs pq.StringArray
	var createdAt, updatedAt sql.NullString

	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&price,
		&categories,
		&imageURLs,
		&p.IsFeatured,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Product{}, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, err
	}
	p.Price = parsed
	p.Categories = categories
	p.ImageURLs = imageURLs
	if createdAt.Valid {
		p.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.String
	}

	return p, nil
}
