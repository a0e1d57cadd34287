package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/shopcore/internal/core/port"
)

var _ port.PopularityReader = (*PopularityView)(nil)

type tableGetter interface {
	Get(key string) (any, error)
}

// A PopularityView serves the popularity group table locally.
type PopularityView struct {
	opPrefix string
	gv       *goka.View
	getter   tableGetter
}

func NewPopularityView(
	seedBrokers []string, group string, opts ...goka.ViewOption,
) (*PopularityView, error) {
	const op = "NewPopularityView"

	opts = append([]goka.ViewOption{withViewLogger(group)}, opts...)
	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		popularityCodec{},
		opts...,
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &PopularityView{
		opPrefix: "PopularityView",
		gv:       gv,
		getter:   gv,
	}, nil
}

// Run blocks in a separate goroutine until ctx is done,
// stopFn is called when the view stops.
func (v *PopularityView) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "Run"
	log := slog.With("op", makeOp(v.opPrefix, op))

	defer wg.Done()

	go func() {
		defer stopFn()
		if err := v.gv.Run(ctx); err != nil {
			log.Error("stopped", "err", err)
			return
		}
		log.Info("stopped")
	}()
	log.Info("running")
}

// Popularity is false until the view holds a score for the product.
func (v *PopularityView) Popularity(productID string) (float64, bool) {
	const op = "Popularity"
	log := slog.With("op", makeOp(v.opPrefix, op), "productID", productID)

	raw, err := v.getter.Get(productID)
	if err != nil {
		log.Debug("failed to get view data", "err", err)
		return 0, false
	}
	if raw == nil {
		return 0, false
	}

	pv, ok := raw.(popularity)
	if !ok {
		log.Error("unexpected type of data", "type", fmt.Sprintf("%T", raw))
		return 0, false
	}
	return float64(pv), true
}
