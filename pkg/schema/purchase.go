package schema

import "github.com/hamba/avro/v2"

const PurchaseSchemaTextV1 = `{
	"type": "record",
	"namespace": "shop",
	"name": "product_purchase",
	"fields" : [
		{"name": "checkout_id", "type": "string"},
		{"name": "product_id", "type": "string"},
		{"name": "quantity", "type": "long"},
		{"name": "price", "type": "double"}
	]
}`

// A PurchaseV1 is one product of a placed order.
type PurchaseV1 struct {
	CheckoutID string  `avro:"checkout_id"`
	ProductID  string  `avro:"product_id"`
	Quantity   int64   `avro:"quantity"`
	Price      float64 `avro:"price"`
}

// PurchaseV1Avro panics on invalid schema text.
func PurchaseV1Avro() avro.Schema {
	return avro.MustParse(PurchaseSchemaTextV1)
}
