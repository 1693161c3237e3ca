package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/xenking/foodking/internal/domain/validation"
)

// PlaceOrder serves POST /api/orders.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	req, err := decodePlaceOrder(d)
	if err != nil {
		fail(w, r, err)
		return
	}

	res, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeData(w, http.StatusCreated,
		func(e *jx.Encoder) { encodeOrder(e, res.Order) },
		strField("message", "Order placed successfully"),
		func(e *jx.Encoder) {
			e.FieldStart("deliveryInfo")
			e.ObjStart()
			e.FieldStart("distance")
			e.Float64(res.Delivery.DistanceKm)
			e.FieldStart("estimatedTime")
			e.Str(res.Delivery.EstimatedTime)
			e.ObjEnd()
		},
	)
}

// GetOrder serves GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// CustomerOrders serves GET /api/orders/customer/{phone}.
func (h *Handler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByPhone(r.Context(), r.PathValue("phone"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeOrders(e, orders) },
		intField("count", len(orders)))
}

// ListOrders serves GET /api/orders?status=&page=&limit=.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := queryInt(q.Get("page"), "page")
	if err != nil {
		fail(w, r, err)
		return
	}
	limit, err := queryInt(q.Get("limit"), "limit")
	if err != nil {
		fail(w, r, err)
		return
	}

	res, err := h.orders.List(r.Context(), q.Get("status"), page, limit)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeOrders(e, res.Orders) },
		intField("count", len(res.Orders)),
		intField("total", res.Total),
		intField("page", res.Page),
		intField("pages", res.Pages),
	)
}

// OrderStats serves GET /api/orders/stats/dashboard.
func (h *Handler) OrderStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.orders.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		for _, f := range []struct {
			name string
			v    int
		}{
			{"todayOrders", st.TodayOrders},
			{"pendingOrders", st.PendingOrders},
			{"acceptedOrders", st.AcceptedOrders},
			{"preparingOrders", st.PreparingOrders},
			{"outForDeliveryOrders", st.OutForDeliveryOrders},
			{"deliveredToday", st.DeliveredToday},
		} {
			e.FieldStart(f.name)
			e.Int(f.v)
		}
		e.FieldStart("todayRevenue")
		encodeMoney(e, st.TodayRevenue)
		e.ObjEnd()
	})
}

// SetOrderStatus serves PUT /api/orders/{id}/status.
func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	req, err := decodeStatusUpdate(d)
	if err != nil {
		fail(w, r, err)
		return
	}

	o, err := h.orders.SetStatus(r.Context(), r.PathValue("id"), req.Status, req.RejectionReason)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) },
		strField("message", "Order status updated to "+string(o.Status)))
}

func queryInt(v, field string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, validation.New(field, "must be an integer")
	}
	return n, nil
}
