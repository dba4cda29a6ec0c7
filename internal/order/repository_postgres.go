package order

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	insertOrderQuery = `
		INSERT INTO orders (user_id, product_id, total_amount, status, payment_intent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING order_id
	`
	getOrderByIDQuery = `
		SELECT order_id, user_id, product_id, total_amount, status, payment_intent_id, created_at, updated_at
		FROM orders
		WHERE order_id = $1
	`
	listOrdersByUserQuery = `
		SELECT order_id, user_id, product_id, total_amount, status, payment_intent_id, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY order_id
	`
	updateOrderStatusQuery = `
		UPDATE orders
		SET status = $1,
			updated_at = $2
		WHERE order_id = $3
	`
	deleteOrderQuery = `DELETE FROM orders WHERE order_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ord Order) (Order, error) {
	var id int
	err := r.db.QueryRow(
		insertOrderQuery,
		ord.UserID,
		ord.ProductID,
		ord.TotalAmount.String(),
		string(ord.Status),
		ord.PaymentIntentID,
		ord.CreatedAt,
		ord.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return Order{}, err
	}

	ord.ID = id
	return ord, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(getOrderByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	rows, err := r.db.Query(listOrdersByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, ord)
	}

	return orders, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(id int, status Status, updatedAt string) (Order, error) {
	result, err := r.db.Exec(updateOrderStatusQuery, string(status), updatedAt, id)
	if err != nil {
		return Order{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Order{}, err
	}
	if affected == 0 {
		return Order{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteOrderQuery, id)
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

func scanOrder(scanner rowScanner) (Order, error) {
	ord := Order{}
	var amount string
	var status string
	var intentID sql.NullString
	var createdAt, updatedAt sql.NullString

	if err := scanner.Scan(
		&ord.ID,
		&ord.UserID,
		&ord.ProductID,
		&amount,
		&status,
		&intentID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Order{}, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return Order{}, err
	}
	ord.TotalAmount = parsed
	st, ok := ParseStatus(status)
	if !ok {
		return Order{}, fmt.Errorf("unknown order status %q", status)
	}
	ord.Status = st
	if intentID.Valid {
		ord.PaymentIntentID = intentID.String
	}
	if createdAt.Valid {
		ord.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		ord.UpdatedAt = updatedAt.String
	}

	return ord, nil
}
