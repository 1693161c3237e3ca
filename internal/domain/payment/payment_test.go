package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/foodking/internal/domain/order"
	"github.com/xenking/foodking/internal/domain/validation"
)

const secret = "rzp_test_secret"

func TestSign_MatchesHMAC(t *testing.T) {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte("order_1|pay_1"))
	want := hex.EncodeToString(h.Sum(nil))

	assert.Equal(t, want, Sign(secret, "order_1", "pay_1"))
	assert.NoError(t, Verify(secret, "order_1", "pay_1", want))
}

func TestVerify_SingleCharMutations(t *testing.T) {
	sig := Sign(secret, "order_1", "pay_1")
	const hexDigits = "0123456789abcdef"

	for i := range sig {
		for _, c := range []byte(hexDigits + "G") {
			if c == sig[i] {
				continue
			}
			mutated := []byte(sig)
			mutated[i] = c
			err := Verify(secret, "order_1", "pay_1", string(mutated))
			require.ErrorIs(t, err, ErrSignatureMismatch, "position %d char %q", i, c)
		}
	}

	// Truncated and extended signatures are mismatches too.
	assert.ErrorIs(t, Verify(secret, "order_1", "pay_1", sig[:len(sig)-1]), ErrSignatureMismatch)
	assert.ErrorIs(t, Verify(secret, "order_1", "pay_1", sig+"0"), ErrSignatureMismatch)
	// Signature is bound to the ids.
	assert.ErrorIs(t, Verify(secret, "order_1", "pay_2", sig), ErrSignatureMismatch)
	assert.ErrorIs(t, Verify("other", "order_1", "pay_1", sig), ErrSignatureMismatch)
}

func TestVerify_Errors(t *testing.T) {
	var cfgErr *ConfigurationError
	err := Verify("", "order_1", "pay_1", "sig")
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, ErrNotConfigured)

	tests := []struct {
		orderRef, paymentRef, sig string
		field                     string
	}{
		{"", "pay_1", "sig", "razorpay_order_id"},
		{"order_1", "", "sig", "razorpay_payment_id"},
		{"order_1", "pay_1", "", "razorpay_signature"},
	}
	for _, tt := range tests {
		var vErr *validation.Error
		require.True(t, errors.As(Verify(secret, tt.orderRef, tt.paymentRef, tt.sig), &vErr))
		assert.Equal(t, tt.field, vErr.Field)
	}
}

type mockOrders struct {
	byID      map[string]*order.Order
	patches   []order.Patch
	updateErr error
}

func (m *mockOrders) Update(_ context.Context, id string, p order.Patch) (*order.Order, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	m.patches = append(m.patches, p)
	if p.PaymentStatus != nil {
		o.PaymentStatus = *p.PaymentStatus
	}
	if p.GatewayOrderID != nil {
		o.GatewayOrderID = *p.GatewayOrderID
	}
	if p.GatewayPaymentID != nil {
		o.GatewayPaymentID = *p.GatewayPaymentID
	}
	return o, nil
}

func newVerifier(t *testing.T, s string) (*Verifier, *mockOrders) {
	t.Helper()
	orders := &mockOrders{byID: map[string]*order.Order{
		"o1": {ID: "o1", PaymentStatus: order.PaymentPending},
	}}
	v, err := NewVerifier(s, orders, nil)
	require.NoError(t, err)
	return v, orders
}

func TestVerifyPayment_Success(t *testing.T) {
	v, orders := newVerifier(t, secret)

	o, err := v.VerifyPayment(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        Sign(secret, "order_1", "pay_1"),
		OrderID:          "o1",
	})
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, order.PaymentCompleted, o.PaymentStatus)
	assert.Equal(t, "order_1", o.GatewayOrderID)
	assert.Equal(t, "pay_1", o.GatewayPaymentID)
	assert.Len(t, orders.patches, 1)
}

func TestVerifyPayment_WithoutOrder(t *testing.T) {
	v, orders := newVerifier(t, secret)

	o, err := v.VerifyPayment(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        Sign(secret, "order_1", "pay_1"),
	})
	require.NoError(t, err)
	assert.Nil(t, o)
	assert.Empty(t, orders.patches)
}

func TestVerifyPayment_MismatchMarksFailed(t *testing.T) {
	v, orders := newVerifier(t, secret)

	_, err := v.VerifyPayment(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "deadbeef",
		OrderID:          "o1",
	})
	require.ErrorIs(t, err, ErrSignatureMismatch)
	assert.NotContains(t, err.Error(), Sign(secret, "order_1", "pay_1"))
	assert.Equal(t, order.PaymentFailed, orders.byID["o1"].PaymentStatus)
	require.Len(t, orders.patches, 1)
	assert.Nil(t, orders.patches[0].GatewayPaymentID)
}

func TestVerifyPayment_MismatchSurvivesStoreError(t *testing.T) {
	v, orders := newVerifier(t, secret)
	orders.updateErr = errors.New("connection reset")

	core, logs := observer.New(zapcore.ErrorLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))

	_, err := v.VerifyPayment(ctx, VerifyRequest{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "deadbeef",
		OrderID:          "o1",
	})
	require.ErrorIs(t, err, ErrSignatureMismatch)
	assert.NotContains(t, err.Error(), "connection reset")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Mark payment failed", entry.Message)
	assert.Equal(t, "o1", entry.ContextMap()["order_id"])
}

func TestVerifyPayment_UnknownOrder(t *testing.T) {
	v, _ := newVerifier(t, secret)

	_, err := v.VerifyPayment(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        Sign(secret, "order_1", "pay_1"),
		OrderID:          "missing",
	})
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestVerifyPayment_NotConfigured(t *testing.T) {
	v, orders := newVerifier(t, "")
	assert.False(t, v.Configured())

	_, err := v.VerifyPayment(context.Background(), VerifyRequest{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "x",
		OrderID:          "o1",
	})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, orders.patches)
	assert.Equal(t, order.PaymentPending, orders.byID["o1"].PaymentStatus)
}
