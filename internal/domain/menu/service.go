// Package menu manages the restaurant catalog.
package menu

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/foodking/internal/domain/validation"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 300
)

// maxPrice is the first price that no longer fits NUMERIC(10,2).
var maxPrice = decimal.New(1, 8)

// NewItem holds the fields for adding a menu item.
type NewItem struct {
	Name        string
	Description string
	Price       *decimal.Decimal
	Image       string
	Category    Category
	IsAvailable *bool
}

// Patch holds a partial menu item update. Nil fields are left untouched.
type Patch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Image       *string
	Category    *Category
	IsAvailable *bool
}

// Service implements admin and public catalog operations.
type Service struct {
	items Repository
	now   func() time.Time
}

// NewService creates a menu Service backed by the given Repository.
func NewService(items Repository) *Service {
	return &Service{items: items, now: time.Now}
}

// List returns catalog items matching f.
func (s *Service) List(ctx context.Context, f Filter) ([]Item, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, validation.New("category", "invalid category")
	}
	items, err := s.items.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list menu")
	}
	return items, nil
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.items.GetByID(ctx, id)
}

// Add validates and stores a new item. Items are available unless stated
// otherwise.
func (s *Service) Add(ctx context.Context, req NewItem) (*Item, error) {
	if strings.TrimSpace(req.Name) == "" || req.Price == nil || req.Image == "" || req.Category == "" {
		return nil, validation.New("item", "name, price, image and category are required")
	}

	now := s.now()
	item := &Item{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
		Category:    req.Category,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, errors.Wrap(err, "create menu item")
	}
	return item, nil
}

// Update applies p to the item with the given id and re-validates it.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Image != nil {
		item.Image = *p.Image
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.IsAvailable != nil {
		item.IsAvailable = *p.IsAvailable
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	item.UpdatedAt = s.now()

	if err := s.items.Update(ctx, item); err != nil {
		return nil, errors.Wrap(err, "update menu item")
	}
	return item, nil
}

// Delete removes an item from the catalog. Past orders keep their snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}

// ToggleAvailability flips the item's availability flag.
func (s *Service) ToggleAvailability(ctx context.Context, id string) (*Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.IsAvailable = !item.IsAvailable
	item.UpdatedAt = s.now()
	if err := s.items.Update(ctx, item); err != nil {
		return nil, errors.Wrap(err, "update menu item")
	}
	return item, nil
}

func validateItem(item *Item) error {
	if item.Name == "" {
		return validation.Required("name")
	}
	if err := validation.MaxLen("name", item.Name, maxNameLen); err != nil {
		return err
	}
	if err := validation.MaxLen("description", item.Description, maxDescriptionLen); err != nil {
		return err
	}
	if item.Price.IsNegative() {
		return validation.New("price", "cannot be negative")
	}
	if !item.Price.Equal(item.Price.Round(2)) {
		return validation.New("price", "must have at most 2 decimal places")
	}
	if item.Price.GreaterThanOrEqual(maxPrice) {
		return validation.New("price", "must be less than 100000000")
	}
	if item.Image == "" {
		return validation.Required("image")
	}
	if !item.Category.Valid() {
		return validation.New("category", "invalid category")
	}
	return nil
}
