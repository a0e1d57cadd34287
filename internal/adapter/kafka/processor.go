package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/shopcore/internal/core/port"
	"github.com/niksmo/shopcore/pkg/schema"
)

var _ port.PopularityProcessor = (*PopularityProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A purchaseEventCodec used for serde [schema.PurchaseV1]
type purchaseEventCodec struct {
	serde Serde
}

func newPurchaseEventCodec(s Serde) purchaseEventCodec {
	return purchaseEventCodec{s}
}

func (c purchaseEventCodec) Encode(v any) ([]byte, error) {
	const op = "purchaseEventCodec.Encode"
	if _, ok := v.(schema.PurchaseV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c purchaseEventCodec) Decode(data []byte) (any, error) {
	const op = "purchaseEventCodec.Decode"
	var s schema.PurchaseV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A popularity is the total purchased quantity of a product.
type popularity int64

// A popularityCodec used for serde [popularity]
type popularityCodec struct{}

func (popularityCodec) Encode(v any) ([]byte, error) {
	const op = "popularityCodec.Encode"
	pv, ok := v.(popularity)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return strconv.AppendInt(nil, int64(pv), 10), nil
}

func (popularityCodec) Decode(data []byte) (any, error) {
	const op = "popularityCodec.Decode"
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return nil, opErr(err, op)
	}
	return popularity(n), nil
}

// A PopularityProcessor sums purchased quantities per product id
// from the purchases stream into the group table.
type PopularityProcessor struct {
	opPrefix string
	proc     processor
}

func NewPopularityProc(
	seedBrokers []string,
	inputStream string,
	group string,
	purchaseSerde Serde,
	opts ...goka.ProcessorOption,
) (*PopularityProcessor, error) {
	const op = "NewPopularityProc"

	p := PopularityProcessor{opPrefix: "PopularityProcessor"}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(inputStream),
			newPurchaseEventCodec(purchaseSerde),
			p.processFn,
		),
		goka.Persist(popularityCodec{}),
	)

	opts = append([]goka.ProcessorOption{withProcLogger(group)}, opts...)
	gp, err := goka.NewProcessor(seedBrokers, gg, opts...)
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{opPrefix: p.opPrefix, gp: gp}
	return &p, nil
}

func (p *PopularityProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *PopularityProcessor) Close() {
	p.proc.close()
}

func (p *PopularityProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op), "productID", ctx.Key())

	event, ok := msg.(schema.PurchaseV1)
	if !ok || event.Quantity <= 0 {
		log.Warn("skip purchase event", "quantity", event.Quantity)
		return
	}

	var total popularity
	if v, ok := ctx.Value().(popularity); ok {
		total = v
	}
	total += popularity(event.Quantity)
	ctx.SetValue(total)
	log.Debug("popularity updated", "total", int64(total))
}
