package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/foodking/internal/domain/customer"
	"github.com/xenking/foodking/internal/domain/menu"
	"github.com/xenking/foodking/internal/domain/order"
	"github.com/xenking/foodking/internal/domain/payment"
	"github.com/xenking/foodking/internal/domain/validation"
)

var errUnauthorized = errors.New("unauthorized")

// apiError is the wire form of a failed request.
type apiError struct {
	Code    int
	Message string
	// Extra writes payload fields after code and message.
	Extra func(e *jx.Encoder)
}

// mapError converts domain errors to API errors. Unknown errors become a
// generic 500 and are reported through the second result.
func mapError(err error) (apiError, bool) {
	var (
		vErr          *validation.Error
		rangeErr      *order.OutOfDeliveryRangeError
		notFoundErr   *order.ItemNotFoundError
		unavailErr    *order.ItemUnavailableError
		statusErr     *order.InvalidStatusError
		transitionErr *order.TransitionError
		cfgErr        *payment.ConfigurationError
	)

	switch {
	case errors.As(err, &vErr):
		return apiError{Code: http.StatusBadRequest, Message: vErr.Error(), Extra: strField("field", vErr.Field)}, true
	case errors.As(err, &rangeErr):
		return apiError{
			Code:    http.StatusUnprocessableEntity,
			Message: rangeErr.Error(),
			Extra: func(e *jx.Encoder) {
				e.FieldStart("distance")
				e.Float64(rangeErr.DistanceKm)
				e.FieldStart("maxRadius")
				e.Float64(rangeErr.MaxRadiusKm)
			},
		}, true
	case errors.As(err, &notFoundErr):
		return apiError{Code: http.StatusUnprocessableEntity, Message: notFoundErr.Error(), Extra: strField("itemId", notFoundErr.ItemID)}, true
	case errors.As(err, &unavailErr):
		return apiError{Code: http.StatusUnprocessableEntity, Message: unavailErr.Error(), Extra: strField("itemId", unavailErr.ItemID)}, true
	case errors.As(err, &statusErr):
		return apiError{Code: http.StatusBadRequest, Message: "invalid order status", Extra: strField("status", statusErr.Status)}, true
	case errors.As(err, &transitionErr):
		return apiError{
			Code:    http.StatusConflict,
			Message: transitionErr.Error(),
			Extra: func(e *jx.Encoder) {
				e.FieldStart("status")
				e.Str(string(transitionErr.To))
				e.FieldStart("currentStatus")
				e.Str(string(transitionErr.From))
			},
		}, true
	case errors.Is(err, payment.ErrSignatureMismatch):
		return apiError{Code: http.StatusBadRequest, Message: "payment verification failed"}, true
	case errors.As(err, &cfgErr):
		return apiError{Code: http.StatusInternalServerError, Message: "server configuration error"}, false
	case errors.Is(err, order.ErrNotFound):
		return apiError{Code: http.StatusNotFound, Message: "order not found"}, true
	case errors.Is(err, menu.ErrNotFound):
		return apiError{Code: http.StatusNotFound, Message: "menu item not found"}, true
	case errors.Is(err, customer.ErrNotFound):
		return apiError{Code: http.StatusNotFound, Message: "no orders found for this phone number"}, true
	case errors.Is(err, errUnauthorized):
		return apiError{Code: http.StatusUnauthorized, Message: "unauthorized"}, true
	default:
		return apiError{Code: http.StatusInternalServerError, Message: "internal server error"}, false
	}
}

// fail writes err as an API error. Server-side failures are logged.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, expected := mapError(err)
	if !expected {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	writeJSON(w, apiErr.Code, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("success")
		e.Bool(false)
		e.FieldStart("code")
		e.Int(apiErr.Code)
		e.FieldStart("message")
		e.Str(apiErr.Message)
		if apiErr.Extra != nil {
			apiErr.Extra(e)
		}
		e.ObjEnd()
	})
}
