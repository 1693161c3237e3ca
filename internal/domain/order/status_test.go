package order

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/foodking/internal/domain/validation"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusAccepted}:         true,
		{StatusPending, StatusRejected}:         true,
		{StatusAccepted, StatusPreparing}:       true,
		{StatusAccepted, StatusRejected}:        true,
		{StatusPreparing, StatusOutForDelivery}: true,
		{StatusPreparing, StatusRejected}:       true,
		{StatusOutForDelivery, StatusDelivered}: true,
		{StatusOutForDelivery, StatusRejected}:  true,
	}

	for _, from := range Statuses {
		for _, to := range Statuses {
			want := allowed[[2]Status{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, Status("Cooking").Terminal())
	assert.Equal(t, []Status{StatusAccepted, StatusRejected}, StatusPending.Next())
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStatus("Cooking")
	var statusErr *InvalidStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "Cooking", statusErr.Status)

	_, err = ParseStatus("")
	var vErr *validation.Error
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "status", vErr.Field)

	// Values are case sensitive.
	_, err = ParseStatus("pending")
	assert.True(t, errors.As(err, &statusErr))
}

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    PaymentMethod
		wantErr bool
	}{
		{in: "COD", want: PaymentCOD},
		{in: "Online", want: PaymentOnline},
		{in: "", wantErr: true},
		{in: "Card", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePaymentMethod(tt.in)
			if tt.wantErr {
				var vErr *validation.Error
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, "paymentMethod", vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitialPaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentPending, InitialPaymentStatus(PaymentCOD))
	assert.Equal(t, PaymentCompleted, InitialPaymentStatus(PaymentOnline))
}

func TestOutOfDeliveryRangeError_Message(t *testing.T) {
	err := &OutOfDeliveryRangeError{DistanceKm: 7.42, MaxRadiusKm: 5}
	assert.Equal(t, "sorry, we only deliver within 5 km radius, your location is 7.42 km away", err.Error())
}
