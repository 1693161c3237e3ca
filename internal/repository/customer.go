package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/foodking/internal/domain/customer"
)

const (
	customerColumns = `id, name, phone, address, lat, lng, created_at`

	findCustomerByPhoneSQL = `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`

	// The no-op update makes RETURNING yield the existing row on conflict.
	createCustomerSQL = `INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		RETURNING ` + customerColumns
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// FindByPhone returns the customer registered with phone.
func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, findCustomerByPhoneSQL, phone)
	if err != nil {
		return nil, fmt.Errorf("finding customer by phone: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("finding customer by phone: %w", err)
	}
	return &c, nil
}

// Create inserts c. When the phone is already registered the existing row is
// returned unchanged, so concurrent first orders converge on one customer.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, createCustomerSQL,
		c.ID, c.Name, c.Phone, c.Address, c.Location.Lat, c.Location.Lng, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}

	stored, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	return &stored, nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.Location.Lat, &c.Location.Lng, &c.CreatedAt)
	if err != nil {
		return customer.Customer{}, fmt.Errorf("scanning customer: %w", err)
	}
	return c, nil
}
