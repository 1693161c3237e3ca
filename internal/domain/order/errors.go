package order

import (
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// OutOfDeliveryRangeError indicates the customer is outside the delivery radius.
type OutOfDeliveryRangeError struct {
	DistanceKm  float64
	MaxRadiusKm float64
}

func (e *OutOfDeliveryRangeError) Error() string {
	return fmt.Sprintf("sorry, we only deliver within %s km radius, your location is %s km away",
		formatKm(e.MaxRadiusKm), formatKm(e.DistanceKm))
}

// ItemNotFoundError indicates a cart line references a missing menu item.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item with ID %s not found", e.ItemID)
}

// ItemUnavailableError indicates a cart line references an item that is
// switched off in the catalog.
type ItemUnavailableError struct {
	ItemID string
	Name   string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("%s is currently unavailable", e.Name)
}

// InvalidStatusError indicates a status value outside the lifecycle.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q", e.Status)
}

// TransitionError indicates a status change the lifecycle does not allow.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
