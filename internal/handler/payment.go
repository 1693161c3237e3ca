package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/foodking/internal/domain/payment"
)

// VerifyPayment serves POST /api/payment/verify.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	req, err := decodeVerify(d)
	if err != nil {
		fail(w, r, err)
		return
	}

	o, err := h.payments.VerifyPayment(r.Context(), payment.VerifyRequest{
		GatewayOrderID:   req.OrderRef,
		GatewayPaymentID: req.PaymentRef,
		Signature:        req.Signature,
		OrderID:          req.OrderID,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	var data func(e *jx.Encoder)
	if o != nil {
		data = func(e *jx.Encoder) { encodeOrder(e, o) }
	}
	writeData(w, http.StatusOK, data, strField("message", "Payment verified successfully"))
}

// PaymentKey serves GET /api/payment/key, the public key checkout needs.
func (h *Handler) PaymentKey(w http.ResponseWriter, r *http.Request) {
	if h.keyID == "" {
		fail(w, r, &payment.ConfigurationError{Setting: "payment gateway key id"})
		return
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("keyId")
		e.Str(h.keyID)
		e.ObjEnd()
	})
}
