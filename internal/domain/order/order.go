package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/foodking/internal/domain/geo"
)

// Order is a placed customer order. Lines and TotalAmount are fixed at
// creation; only Status, RejectionReason and the payment fields change later.
type Order struct {
	ID               string
	CustomerID       string
	CustomerName     string
	CustomerPhone    string
	Lines            []Line
	TotalAmount      decimal.Decimal
	DeliveryAddress  string
	CustomerLocation geo.Coordinate
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	GatewayOrderID   string
	GatewayPaymentID string
	Status           Status
	RejectionReason  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Line is a snapshot of one menu item as it was priced at order time.
type Line struct {
	ItemID   string          `json:"itemId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Total returns price * quantity.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartLine is a requested item and quantity.
type CartLine struct {
	ItemID   string
	Quantity int
}

// Patch holds the mutable order fields. Nil fields are left untouched.
type Patch struct {
	Status           *Status
	RejectionReason  *string
	PaymentStatus    *PaymentStatus
	GatewayOrderID   *string
	GatewayPaymentID *string
}

// ListFilter selects a page of orders, newest first.
type ListFilter struct {
	Status Status
	Offset int
	Limit  int
}

// Stats summarises today's activity for the admin dashboard.
type Stats struct {
	TodayOrders          int
	PendingOrders        int
	AcceptedOrders       int
	PreparingOrders      int
	OutForDeliveryOrders int
	DeliveredToday       int
	TodayRevenue         decimal.Decimal
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, id string, p Patch) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, int, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
	// Stats counts orders created at or after since, and current per-status
	// totals.
	Stats(ctx context.Context, since time.Time) (*Stats, error)
}
