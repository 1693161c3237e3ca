package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/xenking/foodking/internal/domain/geo"
	"github.com/xenking/foodking/internal/domain/validation"
)

// Info serves GET /api/info.
func (h *Handler) Info(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(h.restaurant)
		e.FieldStart("location")
		encodeCoordinate(e, h.delivery.Origin)
		e.FieldStart("deliveryRadius")
		e.Float64(h.delivery.MaxRadiusKm)
		e.ObjEnd()
	})
}

// CheckDelivery serves GET /api/delivery/check?lat=&lng=.
func (h *Handler) CheckDelivery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := queryFloat(q.Get("lat"), "lat")
	if err != nil {
		fail(w, r, err)
		return
	}
	lng, err := queryFloat(q.Get("lng"), "lng")
	if err != nil {
		fail(w, r, err)
		return
	}

	elig, err := h.orders.Eligibility(geo.Coordinate{Lat: lat, Lng: lng})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("isWithinRadius")
		e.Bool(elig.WithinRadius)
		e.FieldStart("distance")
		e.Float64(elig.DistanceKm)
		e.FieldStart("maxRadius")
		e.Float64(elig.MaxRadiusKm)
		e.ObjEnd()
	})
}

func queryFloat(v, field string) (float64, error) {
	if v == "" {
		return 0, validation.Required(field)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, validation.New(field, "must be a number")
	}
	return f, nil
}
