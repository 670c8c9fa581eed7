// Package shopapi talks to the product and stock JSON API.
package shopapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"MiniCart/internal/cart"
)

var (
	ErrNotFound    = errors.New("shopapi: not found")
	ErrBadStatus   = errors.New("shopapi: bad status")
	ErrUnavailable = errors.New("shopapi: unavailable")
)

const (
	defaultTimeout         = 3 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 10 * time.Second
	maxBodyBytes           = 1 << 20
)

type Options struct {
	Timeout time.Duration
	Log     *zap.Logger

	// BreakerFailures consecutive failures open the breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client implements cart.Catalog and cart.StockService over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	log      *zap.Logger
	breaker  *gobreaker.CircuitBreaker[[]byte]
	products singleflight.Group
}

func NewClient(baseURL string, opts Options) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = defaultBreakerFailures
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = defaultBreakerCooldown
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	c := &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: opts.Log,
	}

	failures := opts.BreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "shopapi",
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

// Product fetches one product. Concurrent lookups of the same id share one
// request; the shared request is not tied to any single caller's
// cancellation and is bounded by the client timeout.
func (c *Client) Product(ctx context.Context, productID int64) (cart.Product, error) {
	key := strconv.FormatInt(productID, 10)
	shared := context.WithoutCancel(ctx)

	ch := c.products.DoChan(key, func() (any, error) {
		var p cart.Product
		if err := c.getJSON(shared, "/products/"+key, &p); err != nil {
			return cart.Product{}, err
		}
		return p, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return cart.Product{}, res.Err
		}
		return res.Val.(cart.Product), nil
	case <-ctx.Done():
		return cart.Product{}, ctx.Err()
	}
}

func (c *Client) Stock(ctx context.Context, productID int64) (cart.Stock, error) {
	var st cart.Stock
	if err := c.getJSON(ctx, "/stock/"+strconv.FormatInt(productID, 10), &st); err != nil {
		return cart.Stock{}, err
	}
	return st, nil
}

// Products lists the whole catalog.
func (c *Client) Products(ctx context.Context) ([]cart.Product, error) {
	var out []cart.Product
	if err := c.getJSON(ctx, "/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, path)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status=%d path=%s", ErrBadStatus, resp.StatusCode, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return body, nil
}
