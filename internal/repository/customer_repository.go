package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/model"
)

type CustomerRepositoryInterface interface {
	Create(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	ListByOwner(ctx context.Context, userID string, activeOnly bool) ([]model.Customer, error)
	Count(ctx context.Context) (int, error)
}

type CustomerRepository struct {
	DB *sql.DB
}

const customerColumns = "id, user_id, phone, first_name, last_name, email, company, active, created_at"

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO customers (id, user_id, phone, first_name, last_name, email, company, active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.UserID, c.Phone, c.FirstName, c.LastName, c.Email, c.Company, c.Active, c.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if isUniqueViolation(err, &pqErr) {
			return apperrors.Validation("a contact with this phone number already exists")
		}
		return apperrors.Upstream(err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id=$1`
	var c model.Customer
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Phone, &c.FirstName, &c.LastName,
		&c.Email, &c.Company, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("customer not found")
		}
		return nil, apperrors.Upstream(err)
	}
	return &c, nil
}

func (r *CustomerRepository) ListByOwner(ctx context.Context, userID string, activeOnly bool) ([]model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE user_id=$1`
	if activeOnly {
		query += ` AND active=true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Phone, &c.FirstName, &c.LastName,
			&c.Email, &c.Company, &c.Active, &c.CreatedAt,
		); err != nil {
			return nil, apperrors.Upstream(err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Upstream(err)
	}
	return customers, nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return 0, apperrors.Upstream(err)
	}
	return count, nil
}

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)
