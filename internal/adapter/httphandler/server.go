package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/niksmo/shopcore/internal/core/port"
	"github.com/rs/cors"
)

const defaultHandlerTimeout = 5 * time.Second

type Instrumenter interface {
	Middleware(http.Handler) http.Handler
	Handler() http.Handler
}

// Deps are the core components served by the gateway.
// Metrics and CORSOrigins are optional.
type Deps struct {
	Cart       port.Cart
	Wishlist   port.Wishlist
	Browser    port.ProductBrowser
	Checkouter port.Checkouter
	UserID     string
	Metrics    Instrumenter

	CORSOrigins []string
}

// NewRouter registers every route of the gateway.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	RegisterCart(mux, d.Cart)
	RegisterWishlist(mux, d.Wishlist)
	RegisterProducts(mux, d.Browser)
	RegisterCheckout(mux, d.Checkouter, d.UserID)

	h := AllowJSON(mux)
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
		h = d.Metrics.Middleware(h)
	}
	if len(d.CORSOrigins) != 0 {
		h = newCORS(d.CORSOrigins).Handler(h)
	}
	return LogRequests(h)
}

func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key"},
	})
}

type HTTPServer struct {
	httpServer *http.Server
}

// NewHTTPServer applies the default handler timeout when timeout is zero.
func NewHTTPServer(
	addr string, handler http.Handler, timeout time.Duration,
) HTTPServer {
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}
	handler = http.TimeoutHandler(handler, timeout, "unavailable")
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Second,
	}
	return HTTPServer{s}
}

func (s HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op, "addr", s.httpServer.Addr)

	defer stopFn()
	log.Info("listening")
	err := s.httpServer.ListenAndServe()
	if err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		log.Error("unexpected servers shutdown", "err", err)
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
	}
	log.Info("http server is closed")
}
