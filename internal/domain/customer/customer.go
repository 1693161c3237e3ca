// Package customer resolves customer identity from a phone number.
//
// There is no account system: the first order from a phone number creates the
// customer record and every later order reuses it as-is.
package customer

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/foodking/internal/domain/geo"
	"github.com/xenking/foodking/internal/domain/validation"
)

// ErrNotFound is returned when no customer has the requested phone.
var ErrNotFound = errors.New("customer not found")

const (
	maxNameLen    = 50
	maxAddressLen = 200
)

// phonePattern accepts ten-digit Indian mobile numbers.
var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// Customer is a person who has placed at least one order.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Address   string
	Location  geo.Coordinate
	CreatedAt time.Time
}

// Details are the customer fields submitted with an order.
type Details struct {
	Name     string
	Phone    string
	Address  string
	Location geo.Coordinate
}

// Repository defines persistence operations for customers.
type Repository interface {
	FindByPhone(ctx context.Context, phone string) (*Customer, error)
	// Create stores c unless a customer with the same phone exists, and
	// returns the stored record either way.
	Create(ctx context.Context, c *Customer) (*Customer, error)
}

// ValidatePhone reports whether phone has the expected regional format.
func ValidatePhone(phone string) error {
	if phone == "" {
		return validation.Required("customerPhone")
	}
	if !phonePattern.MatchString(phone) {
		return validation.New("customerPhone", "must be a valid 10 digit mobile number")
	}
	return nil
}

// Validate checks the fields a new customer record needs.
func (d Details) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return validation.Required("customerName")
	}
	if err := validation.MaxLen("customerName", strings.TrimSpace(d.Name), maxNameLen); err != nil {
		return err
	}
	if err := ValidatePhone(d.Phone); err != nil {
		return err
	}
	if strings.TrimSpace(d.Address) == "" {
		return validation.Required("deliveryAddress")
	}
	return validation.MaxLen("deliveryAddress", d.Address, maxAddressLen)
}

// Service looks up customers by phone, creating them on first sight.
type Service struct {
	customers Repository
	now       func() time.Time
}

// NewService creates a customer Service.
func NewService(customers Repository) *Service {
	return &Service{customers: customers, now: time.Now}
}

// FindByPhone returns the customer registered with phone.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*Customer, error) {
	return s.customers.FindByPhone(ctx, phone)
}

// FindOrCreate returns the existing customer for d.Phone, or creates one from
// d. An existing record is never modified.
func (s *Service) FindOrCreate(ctx context.Context, d Details) (*Customer, error) {
	c, err := s.customers.FindByPhone(ctx, d.Phone)
	switch {
	case err == nil:
		return c, nil
	case !errors.Is(err, ErrNotFound):
		return nil, errors.Wrap(err, "find customer")
	}

	c, err = s.customers.Create(ctx, &Customer{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(d.Name),
		Phone:     d.Phone,
		Address:   d.Address,
		Location:  d.Location,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create customer")
	}
	return c, nil
}
