package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/shopcore/internal/core/domain"
	"github.com/niksmo/shopcore/internal/core/port"
	"github.com/niksmo/shopcore/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.PurchasePublisher = (*PurchaseProducer)(nil)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// A PurchaseProducer publishes one record per purchased product,
// keyed by product id.
type PurchaseProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

// NewPurchaseProducer requires [ProducerClientOpt] and [ProducerEncoderOpt].
func NewPurchaseProducer(
	opts ...ProducerOpt,
) (*PurchaseProducer, error) {
	const op = "NewPurchaseProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, opErr(err, op)
		}
	}

	return newPurchaseProducer(options), nil
}

func newPurchaseProducer(options producerOpts) *PurchaseProducer {
	opPrefix := "PurchaseProducer"
	return &PurchaseProducer{
		producer: producer{opPrefix: opPrefix, cl: options.cl},
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}
}

func (p *PurchaseProducer) Close() {
	p.producer.close()
}

func (p *PurchaseProducer) PublishPurchases(
	ctx context.Context, vs []domain.Purchase,
) error {
	const op = "PublishPurchases"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if len(vs) == 0 {
		return nil
	}

	rs, err := p.createRecords(vs)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, rs...); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	slog.Debug(
		"purchases published",
		"op", makeOp(p.opPrefix, op), "records", len(rs),
	)
	return nil
}

func (p *PurchaseProducer) createRecords(
	vs []domain.Purchase,
) ([]*kgo.Record, error) {
	const op = "createRecords"

	rs := make([]*kgo.Record, 0, len(vs))
	for _, v := range vs {
		s := p.toSchema(v)
		b, err := p.encoder.Encode(s)
		if err != nil {
			return nil, opErr(err, p.opPrefix, op)
		}
		rs = append(rs, &kgo.Record{Key: []byte(s.ProductID), Value: b})
	}
	return rs, nil
}

func (*PurchaseProducer) toSchema(v domain.Purchase) schema.PurchaseV1 {
	return purchaseToSchemaV1(v)
}
