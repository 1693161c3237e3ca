package menu

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested menu item does not exist.
var ErrNotFound = errors.New("menu item not found")

// Category is one of the fixed menu sections.
type Category string

const (
	CategoryStarters   Category = "Starters"
	CategoryMainCourse Category = "Main Course"
	CategoryDesserts   Category = "Desserts"
	CategoryBeverages  Category = "Beverages"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryStarters,
	CategoryMainCourse,
	CategoryDesserts,
	CategoryBeverages,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Item represents a catalog item available for purchase.
type Item struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	Category    Category
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Category  Category
	Available *bool
}

// Repository defines persistence operations for the menu catalog.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id string) error
}
