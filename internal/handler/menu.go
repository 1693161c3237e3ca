package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/xenking/foodking/internal/domain/menu"
	"github.com/xenking/foodking/internal/domain/validation"
)

// ListMenu serves GET /api/menu?category=&available=.
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := menu.Filter{Category: menu.Category(q.Get("category"))}
	if v := q.Get("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			fail(w, r, validation.New("available", "must be true or false"))
			return
		}
		f.Available = &available
	}

	items, err := h.menu.List(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range items {
			encodeMenuItem(e, &items[i])
		}
		e.ArrEnd()
	}, intField("count", len(items)))
}

// GetMenuItem serves GET /api/menu/{id}.
func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.menu.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeMenuItem(e, it) })
}

// AddMenuItem serves POST /api/menu.
func (h *Handler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	p, err := h.readMenuPatch(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	it, err := h.menu.Add(r.Context(), menu.NewItem{
		Name:        deref(p.Name),
		Description: deref(p.Description),
		Price:       p.Price,
		Image:       deref(p.Image),
		Category:    deref(p.Category),
		IsAvailable: p.IsAvailable,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, func(e *jx.Encoder) { encodeMenuItem(e, it) },
		strField("message", "menu item created"))
}

// UpdateMenuItem serves PUT /api/menu/{id}. Only supplied fields change.
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	p, err := h.readMenuPatch(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	it, err := h.menu.Update(r.Context(), r.PathValue("id"), p)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeMenuItem(e, it) },
		strField("message", "menu item updated"))
}

// DeleteMenuItem serves DELETE /api/menu/{id}.
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.menu.Delete(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil, strField("message", "menu item deleted"))
}

// ToggleMenuItem serves PATCH /api/menu/{id}/toggle-availability.
func (h *Handler) ToggleMenuItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.menu.ToggleAvailability(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	msg := "menu item is now unavailable"
	if it.IsAvailable {
		msg = "menu item is now available"
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeMenuItem(e, it) }, strField("message", msg))
}

func (h *Handler) readMenuPatch(w http.ResponseWriter, r *http.Request) (menu.Patch, error) {
	d, err := readBody(w, r)
	if err != nil {
		return menu.Patch{}, err
	}
	return decodeMenuPatch(d)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
