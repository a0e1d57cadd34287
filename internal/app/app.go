package app

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/niksmo/shopcore/config"
	"github.com/niksmo/shopcore/internal/adapter"
	"github.com/niksmo/shopcore/internal/adapter/api"
	"github.com/niksmo/shopcore/internal/adapter/httphandler"
	"github.com/niksmo/shopcore/internal/adapter/kafka"
	"github.com/niksmo/shopcore/internal/adapter/metrics"
	"github.com/niksmo/shopcore/internal/adapter/storage"
	"github.com/niksmo/shopcore/internal/core/port"
	"github.com/niksmo/shopcore/internal/core/service"
	"github.com/niksmo/shopcore/internal/core/store"
	"github.com/niksmo/shopcore/pkg/retry"
	"github.com/niksmo/shopcore/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

const writeBackoff = 50 * time.Millisecond

type closableStorage interface {
	port.KeyValueStorage
	Close()
}

type stores struct {
	cart     *store.Cart
	wishlist *store.Wishlist
}

type kafkaAdapters struct {
	enabled   bool
	producer  *kafka.PurchaseProducer
	processor *kafka.PopularityProcessor
	view      *kafka.PopularityView
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	metrics    *metrics.Metrics
	storage    closableStorage
	stores     stores
	client     *api.Client
	kafka      kafkaAdapters
	service    *service.Service
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.metrics = metrics.New()
	app.initStorage()
	app.initStores()
	app.initAPIClient()
	app.initKafka()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	var (
		s   closableStorage
		err error
	)

	cfg := app.cfg.Storage
	switch cfg.Driver {
	case config.DriverMemory:
		s = storage.NewMemoryStorage()
	case config.DriverLevelDB:
		s, err = storage.NewLevelDBStorage(cfg.LevelDBPath)
	case config.DriverRedis:
		s, err = storage.NewRedisStorage(app.ctx, storage.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix + app.cfg.User.ID + ":",
		})
	case config.DriverPostgres:
		s, err = storage.NewSQLStorage(app.ctx, cfg.SQLDB)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		app.fallDown(op, err)
	}

	slog.Info("storage is ready", "op", op, "driver", cfg.Driver)
	app.storage = s
}

func (app *App) initStores() {
	opts := []store.Option{
		store.RetryOpt(retry.Config{
			MaxAttempts: app.cfg.Persistence.WriteAttempts,
			Backoff:     retry.ExponentialBackoff(writeBackoff),
			ShouldRetry: retry.NotCanceled,
		}),
	}
	if app.cfg.Persistence.Async {
		opts = append(opts, store.AsyncPersistenceOpt())
	}

	s := app.metrics.Storage(app.storage)
	cart := store.NewCart(s, opts...)
	wishlist := store.NewWishlist(s, opts...)
	if err := errors.Join(
		cart.Initialize(app.ctx), wishlist.Initialize(app.ctx),
	); err != nil {
		slog.Warn("stores will load on first use",
			"op", "App.initStores", "err", err)
	}

	app.stores = stores{cart: cart, wishlist: wishlist}
}

func (app *App) initAPIClient() {
	const op = "App.initAPIClient"

	var opts []api.ClientOpt
	if app.cfg.API.Timeout > 0 {
		opts = append(opts, api.TimeoutOpt(app.cfg.API.Timeout))
	}

	cl, err := api.NewClient(app.cfg.API.BaseURL, opts...)
	if err != nil {
		app.fallDown(op, err)
	}
	app.client = cl
}

func (app *App) initKafka() {
	const op = "App.initKafka"

	cfg := app.cfg.Broker
	if !cfg.Enabled() {
		slog.Info("broker is not configured, purchase events are disabled", "op", op)
		return
	}

	tlsConfig := app.brokerTLS()
	kafka.UseGokaTLS(tlsConfig)

	purchaseSerde := app.purchaseSerde(tlsConfig)
	topic := cfg.Topics.ProductPurchases

	producer, err := kafka.NewPurchaseProducer(
		kafka.ProducerClientOpt(app.ctx, kafka.Brokers{
			Seeds: cfg.SeedBrokers,
			TLS:   tlsConfig,
		}, topic),
		kafka.ProducerEncoderOpt(purchaseSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	processor, err := kafka.NewPopularityProc(
		cfg.SeedBrokers, topic, cfg.Groups.Popularity, purchaseSerde,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	view, err := kafka.NewPopularityView(cfg.SeedBrokers, cfg.Groups.Popularity)
	if err != nil {
		app.fallDown(op, err)
	}

	app.kafka = kafkaAdapters{
		enabled:   true,
		producer:  producer,
		processor: processor,
		view:      view,
	}
}

func (app *App) brokerTLS() *tls.Config {
	const op = "App.brokerTLS"

	files := app.cfg.Broker.TLS
	if !files.Enabled() {
		return nil
	}
	tlsConfig, err := adapter.MakeTLSConfig(
		files.CAFile, files.CertFile, files.KeyFile,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	return tlsConfig
}

func (app *App) purchaseSerde(tlsConfig *tls.Config) schema.Serde {
	const op = "App.purchaseSerde"

	opts := []sr.ClientOpt{sr.URLs(app.cfg.Broker.SchemaRegistryURLs...)}
	if tlsConfig != nil {
		opts = append(opts, sr.DialTLSConfig(tlsConfig))
	}

	srClient, err := sr.NewClient(opts...)
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdePurchaseV1(
		app.ctx,
		schema.SubjectOpt(
			schema.TopicSubject(app.cfg.Broker.Topics.ProductPurchases),
		),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	return serde
}

func (app *App) initCoreService() {
	var opts []service.Option
	if app.kafka.enabled {
		opts = append(opts,
			service.WithPurchasePublisher(app.kafka.producer),
			service.WithPopularityReader(app.kafka.view),
			service.WithBackground(app.kafka.processor, app.kafka.view),
		)
	}

	app.service = service.New(
		app.client, app.client, app.stores.cart, opts...,
	)
}

func (app *App) initInboundAdapters() {
	handler := httphandler.NewRouter(httphandler.Deps{
		Cart:       app.stores.cart,
		Wishlist:   app.stores.wishlist,
		Browser:    app.service,
		Checkouter: app.service,
		UserID:     app.cfg.User.ID,
		Metrics:    app.metrics,

		CORSOrigins: app.cfg.HTTPCORSOrigins,
	})
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler, app.cfg.HTTPHandlerTimeout,
	)
}

// Run blocks while background components are preparing.
func (app *App) Run(stopFn context.CancelFunc) {
	app.service.Run(app.ctx, stopFn)
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.service.Close()
	if app.kafka.enabled {
		app.kafka.producer.Close()
	}

	if err := app.stores.cart.Close(ctx); err != nil {
		slog.Error("failed to flush cart", "err", err)
	}
	if err := app.stores.wishlist.Close(ctx); err != nil {
		slog.Error("failed to flush wishlist", "err", err)
	}
	app.storage.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
