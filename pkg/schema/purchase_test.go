package schema

import (
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseV1(t *testing.T) {
	var s avro.Schema
	require.NotPanics(t, func() {
		s = PurchaseV1Avro()
	})

	v := PurchaseV1{
		CheckoutID: "c",
		ProductID:  "p",
		Quantity:   2,
		Price:      0.1,
	}

	data, err := AvroEncodeFn(s)(v)
	require.NoError(t, err)

	var got PurchaseV1
	require.NoError(t, AvroDecodeFn(s)(data, &got))
	assert.Equal(t, v, got)
}
