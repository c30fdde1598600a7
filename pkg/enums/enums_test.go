package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayoutStatus(t *testing.T) {
	status, err := ParsePayoutStatus("pending")
	require.NoError(t, err)
	assert.Equal(t, PayoutStatusPending, status)
	assert.True(t, status.IsValid())

	_, err = ParsePayoutStatus("settled")
	assert.Error(t, err)
}

func TestParseFulfillmentStatus(t *testing.T) {
	status, err := ParseFulfillmentStatus("picked_up")
	require.NoError(t, err)
	assert.Equal(t, FulfillmentStatusPickedUp, status)

	_, err = ParseFulfillmentStatus("")
	assert.Error(t, err)
}

func TestPayoutEligibleFulfillmentStatuses(t *testing.T) {
	assert.ElementsMatch(t,
		[]FulfillmentStatus{FulfillmentStatusDelivered, FulfillmentStatusPickedUp},
		PayoutEligibleFulfillmentStatuses,
	)
}

func TestParsePixKeyType(t *testing.T) {
	keyType, err := ParsePixKeyType("EVP")
	require.NoError(t, err)
	assert.Equal(t, PixKeyTypeEVP, keyType)

	_, err = ParsePixKeyType("evp")
	assert.Error(t, err, "pix key types are uppercase on the wire")
}

func TestInvalidEnumValuesAreRejected(t *testing.T) {
	assert.False(t, PaymentStatus("charged").IsValid())
	assert.False(t, PayoutMethod("TED").IsValid())
	assert.False(t, ResellerStatus("banned").IsValid())
}
