// Package payment checks payment gateway callbacks.
//
// The gateway signs every successful checkout with HMAC-SHA256 over
// "<gateway order id>|<gateway payment id>" using the merchant secret. Nothing
// here talks to the gateway; verification is purely local.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/go-faster/errors"

	"github.com/xenking/foodking/internal/domain/validation"
)

// ErrSignatureMismatch is returned when a callback signature does not match.
var ErrSignatureMismatch = errors.New("payment signature mismatch")

// ConfigurationError indicates a required server setting is missing.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return e.Setting + " is not configured"
}

// ErrNotConfigured is returned when no gateway secret is set.
var ErrNotConfigured error = &ConfigurationError{Setting: "payment gateway secret"}

// Sign returns the hex-encoded signature the gateway produces for the pair.
func Sign(secret, orderRef, paymentRef string) string {
	return hex.EncodeToString(mac(secret, orderRef, paymentRef))
}

// Verify checks signature against the expected signature for the pair.
// Missing callback fields are reported before a missing secret.
func Verify(secret, orderRef, paymentRef, signature string) error {
	switch {
	case orderRef == "":
		return validation.Required("razorpay_order_id")
	case paymentRef == "":
		return validation.Required("razorpay_payment_id")
	case signature == "":
		return validation.Required("razorpay_signature")
	case secret == "":
		return ErrNotConfigured
	}

	expected := []byte(Sign(secret, orderRef, paymentRef))
	if subtle.ConstantTimeCompare(expected, []byte(signature)) != 1 {
		return ErrSignatureMismatch
	}
	return nil
}

func mac(secret, orderRef, paymentRef string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderRef))
	h.Write([]byte{'|'})
	h.Write([]byte(paymentRef))
	return h.Sum(nil)
}
