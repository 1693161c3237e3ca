package order

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/foodking/internal/domain/customer"
	"github.com/xenking/foodking/internal/domain/geo"
	"github.com/xenking/foodking/internal/domain/menu"
	"github.com/xenking/foodking/internal/domain/validation"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100

	// MaxLineQuantity caps the quantity of a single cart line.
	MaxLineQuantity = 100
)

// maxTotal is the first amount that no longer fits NUMERIC(12,2).
var maxTotal = decimal.New(1, 10)

// Catalog looks up menu items for pricing.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []string) ([]menu.Item, error)
}

// CustomerResolver maps phone numbers to customer records.
type CustomerResolver interface {
	FindOrCreate(ctx context.Context, d customer.Details) (*customer.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*customer.Customer, error)
}

// PlaceOrderRequest holds the input for placing an order. Lat and Lng are
// pointers so a missing axis can be told apart from zero.
type PlaceOrderRequest struct {
	CustomerName     string
	CustomerPhone    string
	DeliveryAddress  string
	Lat              *float64
	Lng              *float64
	Items            []CartLine
	PaymentMethod    string
	GatewayOrderID   string
	GatewayPaymentID string
}

// DeliveryInfo is shown to the customer after ordering.
type DeliveryInfo struct {
	DistanceKm    float64
	EstimatedTime string
}

// PlaceOrderResult holds the output of a successfully placed order.
type PlaceOrderResult struct {
	Order    *Order
	Delivery DeliveryInfo
}

// ListResult is one page of orders.
type ListResult struct {
	Orders []Order
	Total  int
	Page   int
	Pages  int
}

// Config tunes order handling.
type Config struct {
	// StrictLifecycle rejects status changes outside the lifecycle graph.
	// When false any known status may follow any other.
	StrictLifecycle bool
	EstimatedTime   string
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithMeterProvider sets the meter provider used for order counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.meterProvider = mp }
}

// WithTracerProvider sets the tracer provider used for order spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracerProvider = tp }
}

// Service encapsulates order placement and lifecycle logic.
type Service struct {
	eligibility *geo.Checker
	catalog     Catalog
	customers   CustomerResolver
	orders      Repository
	cfg         Config
	now         func() time.Time

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	placed         metric.Int64Counter
	rejected       metric.Int64Counter
	statusChanges  metric.Int64Counter
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	eligibility *geo.Checker,
	catalog Catalog,
	customers CustomerResolver,
	orders Repository,
	cfg Config,
	opts ...Option,
) (*Service, error) {
	s := &Service{
		eligibility:    eligibility,
		catalog:        catalog,
		customers:      customers,
		orders:         orders,
		cfg:            cfg,
		now:            time.Now,
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
	}
	for _, o := range opts {
		o(s)
	}

	const scope = "github.com/xenking/foodking/internal/domain/order"
	s.tracer = s.tracerProvider.Tracer(scope)
	meter := s.meterProvider.Meter(scope)

	var err error
	if s.placed, err = meter.Int64Counter("foodking.orders.placed",
		metric.WithDescription("Orders successfully placed"),
	); err != nil {
		return nil, errors.Wrap(err, "placed counter")
	}
	if s.rejected, err = meter.Int64Counter("foodking.orders.rejected_carts",
		metric.WithDescription("Order placements rejected before persisting"),
	); err != nil {
		return nil, errors.Wrap(err, "rejected counter")
	}
	if s.statusChanges, err = meter.Int64Counter("foodking.orders.status_changes",
		metric.WithDescription("Order status changes applied"),
	); err != nil {
		return nil, errors.Wrap(err, "status counter")
	}
	return s, nil
}

// Eligibility exposes the delivery radius check for previews.
func (s *Service) Eligibility(loc geo.Coordinate) (geo.Eligibility, error) {
	if err := loc.Validate(); err != nil {
		return geo.Eligibility{}, err
	}
	return s.eligibility.Check(loc), nil
}

// PlaceOrder validates the request, checks the delivery radius, prices the
// cart from the catalog, resolves the customer and persists the order.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (_ *PlaceOrderResult, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder")
	defer func() { endSpan(span, rerr) }()

	details, method, err := req.validate()
	if err != nil {
		s.reject(ctx, "validation")
		return nil, err
	}

	elig := s.eligibility.Check(details.Location)
	span.SetAttributes(attribute.Float64("delivery.distance_km", elig.DistanceKm))
	if !elig.WithinRadius {
		s.reject(ctx, "out_of_range")
		return nil, &OutOfDeliveryRangeError{
			DistanceKm:  elig.DistanceKm,
			MaxRadiusKm: elig.MaxRadiusKm,
		}
	}

	// Price the cart before touching customers so a rejected cart leaves no
	// records behind.
	lines, total, err := s.priceCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	c, err := s.customers.FindOrCreate(ctx, details)
	if err != nil {
		return nil, errors.Wrap(err, "resolve customer")
	}

	now := s.now()
	o := &Order{
		ID:               uuid.New().String(),
		CustomerID:       c.ID,
		CustomerName:     c.Name,
		CustomerPhone:    c.Phone,
		Lines:            lines,
		TotalAmount:      total,
		DeliveryAddress:  details.Address,
		CustomerLocation: details.Location,
		PaymentMethod:    method,
		PaymentStatus:    InitialPaymentStatus(method),
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", string(method))))
	span.SetAttributes(attribute.String("order.id", o.ID))

	return &PlaceOrderResult{
		Order: o,
		Delivery: DeliveryInfo{
			DistanceKm:    elig.DistanceKm,
			EstimatedTime: s.cfg.EstimatedTime,
		},
	}, nil
}

// priceCart fetches all requested items in a single batch and snapshots them
// in request order. Prices come from the catalog only.
func (s *Service) priceCart(ctx context.Context, cart []CartLine) ([]Line, decimal.Decimal, error) {
	ids := make([]string, len(cart))
	for i, l := range cart {
		ids[i] = l.ItemID
	}

	fetched, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, errors.Wrap(err, "get menu items")
	}

	byID := make(map[string]menu.Item, len(fetched))
	for _, it := range fetched {
		byID[it.ID] = it
	}

	lines := make([]Line, 0, len(cart))
	total := decimal.Zero
	for _, l := range cart {
		it, ok := byID[l.ItemID]
		if !ok {
			s.reject(ctx, "item_not_found")
			return nil, decimal.Zero, &ItemNotFoundError{ItemID: l.ItemID}
		}
		if !it.IsAvailable {
			s.reject(ctx, "item_unavailable")
			return nil, decimal.Zero, &ItemUnavailableError{ItemID: it.ID, Name: it.Name}
		}

		line := Line{
			ItemID:   it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: l.Quantity,
		}
		total = total.Add(line.Total())
		lines = append(lines, line)
	}
	if total.GreaterThanOrEqual(maxTotal) {
		s.reject(ctx, "total_too_large")
		return nil, decimal.Zero, validation.New("items", "order total is too large")
	}
	return lines, total, nil
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err)
	}
	return o, nil
}

// SetStatus moves an order to status. A rejection reason is stored only when
// the new status is Rejected.
func (s *Service) SetStatus(ctx context.Context, id, status, rejectionReason string) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.SetStatus", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("order.status", status),
	))
	defer func() { endSpan(span, rerr) }()

	next, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err)
	}

	if s.cfg.StrictLifecycle && !CanTransition(o.Status, next) {
		return nil, &TransitionError{From: o.Status, To: next}
	}

	p := Patch{Status: &next}
	switch {
	case next == StatusRejected && rejectionReason != "":
		p.RejectionReason = &rejectionReason
	case next != StatusRejected && o.RejectionReason != "":
		cleared := ""
		p.RejectionReason = &cleared
	}

	updated, err := s.orders.Update(ctx, id, p)
	if err != nil {
		return nil, wrapLookup(err)
	}

	s.statusChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(o.Status)),
		attribute.String("to", string(next)),
	))
	return updated, nil
}

// List returns a page of orders, optionally filtered by status. Pages start
// at 1.
func (s *Service) List(ctx context.Context, status string, page, limit int) (*ListResult, error) {
	var f ListFilter
	if status != "" {
		st, err := ParseStatus(status)
		if err != nil {
			return nil, err
		}
		f.Status = st
	}
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit

	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	return &ListResult{
		Orders: orders,
		Total:  total,
		Page:   page,
		Pages:  int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// ListByPhone returns every order of the customer registered with phone,
// newest first.
func (s *Service) ListByPhone(ctx context.Context, phone string) ([]Order, error) {
	c, err := s.customers.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "find customer")
	}

	orders, err := s.orders.ListByCustomer(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list customer orders")
	}
	return orders, nil
}

// Stats returns the dashboard summary. Today starts at midnight in the
// service clock's location.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	st, err := s.orders.Stats(ctx, midnight)
	if err != nil {
		return nil, errors.Wrap(err, "order stats")
	}
	return st, nil
}

func (req PlaceOrderRequest) validate() (customer.Details, PaymentMethod, error) {
	d := customer.Details{
		Name:    req.CustomerName,
		Phone:   req.CustomerPhone,
		Address: req.DeliveryAddress,
	}
	if err := d.Validate(); err != nil {
		return d, "", err
	}

	if req.Lat == nil || req.Lng == nil {
		return d, "", validation.New("customerLocation", "lat and lng are required")
	}
	d.Location = geo.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	if err := d.Location.Validate(); err != nil {
		return d, "", err
	}

	if len(req.Items) == 0 {
		return d, "", validation.Required("items")
	}
	for i, l := range req.Items {
		if l.ItemID == "" {
			return d, "", validation.Required(fmt.Sprintf("items[%d].itemId", i))
		}
		if l.Quantity < 1 {
			return d, "", validation.New(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if l.Quantity > MaxLineQuantity {
			return d, "", validation.New(fmt.Sprintf("items[%d].quantity", i),
				fmt.Sprintf("must be at most %d", MaxLineQuantity))
		}
	}

	method, err := ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return d, "", err
	}
	return d, method, nil
}

func (s *Service) reject(ctx context.Context, reason string) {
	s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func wrapLookup(err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return errors.Wrap(err, "get order")
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
