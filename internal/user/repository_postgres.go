package user

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getUserByIDQuery = `
		SELECT user_id, email, username, password, role, order_ids, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	getUserByEmailQuery = `
		SELECT user_id, email, username, password, role, order_ids, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	insertUserQuery = `
		INSERT INTO users (email, username, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id
	`
	updateUserQuery = `
		UPDATE users
		SET email = $1,
			username = $2,
			updated_at = $3
		WHERE user_id = $4
	`
	appendOrderIDQuery = `
		UPDATE users
		SET order_ids = array_append(coalesce(order_ids, ARRAY[]::integer[]), $2)
		WHERE user_id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	return scanUser(r.db.QueryRow(getUserByIDQuery, id))
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return scanUser(r.db.QueryRow(getUserByEmailQuery, email))
}

func (r *PostgresRepository) Create(user User) (User, error) {
	if user.Role == "" {
		user.Role = RoleCustomer
	}

	var id int
	err := r.db.QueryRow(
		insertUserQuery,
		user.Email,
		user.Username,
		user.Password,
		string(user.Role),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return User{}, err
	}

	user.ID = id
	return user, nil
}

func (r *PostgresRepository) Update(id int, userUpdate User) (User, error) {
	result, err := r.db.Exec(
		updateUserQuery,
		userUpdate.Email,
		userUpdate.Username,
		userUpdate.UpdatedAt,
		id,
	)
	if err != nil {
		return User{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) AppendOrderID(userID, orderID int) error {
	result, err := r.db.Exec(appendOrderIDQuery, userID, orderID)
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

func scanUser(scanner rowScanner) (User, error) {
	user := User{}
	var role string
	var orderIDs pq.Int64Array
	var createdAt, updatedAt sql.NullString

	if err := scanner.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Password,
		&role,
		&orderIDs,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	user.Role = ParseRole(role)
	if len(orderIDs) > 0 {
		user.OrderIDs = make([]int, len(orderIDs))
		for i, v := range orderIDs {
			user.OrderIDs[i] = int(v)
		}
	}
	if createdAt.Valid {
		user.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.String
	}

	return user, nil
}
