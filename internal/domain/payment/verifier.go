package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/foodking/internal/domain/order"
)

// OrderUpdater applies payment results to stored orders.
type OrderUpdater interface {
	Update(ctx context.Context, id string, p order.Patch) (*order.Order, error)
}

// VerifyRequest is a gateway callback. OrderID is the optional application
// order to update.
type VerifyRequest struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	OrderID          string
}

// Verifier checks callbacks and records the outcome on the order.
type Verifier struct {
	secret   string
	orders   OrderUpdater
	outcomes metric.Int64Counter
}

// NewVerifier creates a Verifier. An empty secret is accepted; every
// verification then fails with ErrNotConfigured.
func NewVerifier(secret string, orders OrderUpdater, mp metric.MeterProvider) (*Verifier, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	outcomes, err := mp.Meter("github.com/xenking/foodking/internal/domain/payment").
		Int64Counter("foodking.payments.verifications",
			metric.WithDescription("Payment verifications by outcome"),
		)
	if err != nil {
		return nil, errors.Wrap(err, "verifications counter")
	}
	return &Verifier{secret: secret, orders: orders, outcomes: outcomes}, nil
}

// Configured reports whether a gateway secret is set.
func (v *Verifier) Configured() bool {
	return v.secret != ""
}

// VerifyPayment checks the callback signature. With an OrderID it marks the
// order Completed on success or Failed on mismatch; the returned order is nil
// otherwise. A failure to mark the order Failed is logged and the mismatch is
// still returned.
func (v *Verifier) VerifyPayment(ctx context.Context, req VerifyRequest) (*order.Order, error) {
	err := Verify(v.secret, req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	switch {
	case err == nil:
		v.count(ctx, "verified")
	case errors.Is(err, ErrSignatureMismatch):
		v.count(ctx, "mismatch")
		if req.OrderID != "" {
			failed := order.PaymentFailed
			if _, uerr := v.orders.Update(ctx, req.OrderID, order.Patch{PaymentStatus: &failed}); uerr != nil &&
				!errors.Is(uerr, order.ErrNotFound) {
				zctx.From(ctx).Error("Mark payment failed",
					zap.String("order_id", req.OrderID),
					zap.Error(uerr),
				)
			}
		}
		return nil, err
	default:
		v.count(ctx, "rejected")
		return nil, err
	}

	if req.OrderID == "" {
		return nil, nil
	}

	completed := order.PaymentCompleted
	o, err := v.orders.Update(ctx, req.OrderID, order.Patch{
		PaymentStatus:    &completed,
		GatewayOrderID:   &req.GatewayOrderID,
		GatewayPaymentID: &req.GatewayPaymentID,
	})
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "mark payment completed")
	}
	return o, nil
}

func (v *Verifier) count(ctx context.Context, outcome string) {
	v.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
