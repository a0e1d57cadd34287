// Package api is the client of the remote shop API.
//
// Calls are not retried, retry policy belongs to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/niksmo/shopcore/internal/core/domain"
	"github.com/niksmo/shopcore/internal/core/port"
)

const defaultTimeout = 10 * time.Second

var (
	_ port.CatalogClient = (*Client)(nil)
	_ port.OrderClient   = (*Client)(nil)
)

var (
	// ErrNetwork wraps transport failures, the request may be retried.
	ErrNetwork = errors.New("network error")

	// ErrBadResponse wraps undecodable response bodies.
	ErrBadResponse = errors.New("bad response")
)

// A StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 [StatusError].
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

type ClientOpt func(*Client) error

// HTTPClientOpt uses a copy of hc, so later options never change it.
// The transport stays shared.
func HTTPClientOpt(hc *http.Client) ClientOpt {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client is nil")
		}
		cp := *hc
		c.hc = &cp
		return nil
	}
}

func TimeoutOpt(d time.Duration) ClientOpt {
	return func(c *Client) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		c.hc.Timeout = d
		return nil
	}
}

type Client struct {
	baseURL *url.URL
	hc      *http.Client
}

func NewClient(baseURL string, opts ...ClientOpt) (*Client, error) {
	const op = "api.NewClient"

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid base url %q", op, baseURL)
	}

	c := &Client{
		baseURL: u,
		hc:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return c, nil
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.Products"

	var vs []product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &vs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps := make([]domain.Product, len(vs))
	for i, v := range vs {
		ps[i] = v.toDomain()
	}
	return ps, nil
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	const op = "Client.Product"

	var v product
	path := "/products/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &v); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return v.toDomain(), nil
}

// PlaceOrder sends the checkout id as Idempotency-Key.
func (c *Client) PlaceOrder(
	ctx context.Context, r domain.OrderRequest,
) (domain.Order, error) {
	const op = "Client.PlaceOrder"

	var v order
	err := c.do(ctx, http.MethodPost, "/orders", toOrderRequest(r), &v,
		header{"Idempotency-Key", r.CheckoutID})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return v.toDomain(), nil
}

func (c *Client) Orders(
	ctx context.Context, userID string,
) ([]domain.Order, error) {
	const op = "Client.Orders"

	var vs []order
	path := "/orders/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &vs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	os := make([]domain.Order, len(vs))
	for i, v := range vs {
		os[i] = v.toDomain()
	}
	return os, nil
}

type header struct {
	key, value string
}

func (c *Client) do(
	ctx context.Context, method, path string, in, out any, hs ...header,
) error {
	log := slog.With("op", "Client.do", "method", method, "path", path)

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(
		ctx, method, c.baseURL.String()+path, body,
	)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range hs {
		req.Header.Set(h.key, h.value)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		log.Warn("request failed", "err", err)
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		se := statusError(res)
		log.Warn("unexpected status", "status", res.StatusCode, "err", se)
		return se
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return nil
}

// statusError prefers the "error" field of a JSON body.
func statusError(res *http.Response) *StatusError {
	se := &StatusError{
		StatusCode: res.StatusCode,
		Message: fmt.Sprintf(
			"HTTP %d: %s", res.StatusCode, http.StatusText(res.StatusCode),
		),
	}

	var eb errorBody
	err := json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(&eb)
	if err == nil && eb.Error != "" {
		se.Message = eb.Error
	}
	return se
}
