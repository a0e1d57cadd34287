package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"github.com/lovoo/goka"
	"github.com/niksmo/shopcore/internal/core/domain"
	"github.com/niksmo/shopcore/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// Brokers locates the cluster. TLS is used when it is not nil.
type Brokers struct {
	Seeds []string
	TLS   *tls.Config
}

func (b Brokers) clientOpts() []kgo.Opt {
	opts := []kgo.Opt{kgo.SeedBrokers(b.Seeds...)}
	if b.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(b.TLS))
	}
	return opts
}

// ProducerClientOpt pings the brokers before returning. Every record
// goes to topic and waits for all in-sync replicas.
func ProducerClientOpt(
	ctx context.Context, brokers Brokers, topic string,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kopts := append(brokers.clientOpts(),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		)

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

// UseGokaTLS switches goka processors and views created afterwards to TLS.
func UseGokaTLS(tlsConfig *tls.Config) {
	if tlsConfig == nil {
		return
	}
	cfg := goka.DefaultConfig()
	cfg.Net.TLS.Enable = true
	cfg.Net.TLS.Config = tlsConfig
	goka.ReplaceGlobalConfig(cfg)
}

// gokaLogger routes goka's internal logging to slog at debug level.
func gokaLogger(component string) *log.Logger {
	h := slog.Default().With("component", component).Handler()
	return slog.NewLogLogger(h, slog.LevelDebug)
}

func withProcLogger(group string) goka.ProcessorOption {
	return goka.WithLogger(gokaLogger("goka.processor." + group))
}

func withViewLogger(table string) goka.ViewOption {
	return goka.WithViewLogger(gokaLogger("goka.view." + table))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func purchaseToSchemaV1(v domain.Purchase) schema.PurchaseV1 {
	return schema.PurchaseV1{
		CheckoutID: v.CheckoutID,
		ProductID:  v.ProductID,
		Quantity:   int64(v.Quantity),
		Price:      v.Price,
	}
}
