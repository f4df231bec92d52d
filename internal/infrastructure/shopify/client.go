package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"
)

const DefaultAPIVersion = "2024-10"

// graphQLQuerier is the part of goshopify.GraphQLService the client uses
type graphQLQuerier interface {
	Query(ctx context.Context, q string, vars, resp interface{}) error
}

type querierFactory func(shopDomain, accessToken string) (graphQLQuerier, error)

// RequestObserver records the outcome of every Admin API request
type RequestObserver interface {
	ObserveRequest(operation string, status int, seconds float64)
}

type noopObserver struct{}

func (noopObserver) ObserveRequest(string, int, float64) {}

// ClientConfig holds the app credentials and transport settings
type ClientConfig struct {
	APIKey     string
	APISecret  string
	APIVersion string
	Timeout    time.Duration // per attempt
}

// Client reads the Admin GraphQL API through go-shopify
type Client struct {
	app         goshopify.App
	timeout     time.Duration
	newQuerier  querierFactory
	rateLimiter *RateLimiter
	retryConfig RetryConfig
	observer    RequestObserver
	logger      zerolog.Logger
}

var _ ports.APIClient = (*Client)(nil)

// NewClient creates a client with the default retry policy and no throttle
func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	return NewClientWithOptions(cfg, nil, DefaultRetryConfig(), nil, logger)
}

// NewClientWithOptions creates a client with rate limiting, retry and
// request observation
func NewClientWithOptions(
	cfg ClientConfig,
	rateLimiter *RateLimiter,
	retryConfig RetryConfig,
	observer RequestObserver,
	logger zerolog.Logger,
) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if observer == nil {
		observer = noopObserver{}
	}

	app := goshopify.App{
		ApiKey:    cfg.APIKey,
		ApiSecret: cfg.APISecret,
	}
	version := cfg.APIVersion
	return &Client{
		app:     app,
		timeout: cfg.Timeout,
		newQuerier: func(shopDomain, accessToken string) (graphQLQuerier, error) {
			client, err := goshopify.NewClient(app, shopDomain, accessToken, goshopify.WithVersion(version))
			if err != nil {
				return nil, fmt.Errorf("failed to create client: %w", err)
			}
			return client.GraphQL, nil
		},
		rateLimiter: rateLimiter,
		retryConfig: retryConfig,
		observer:    observer,
		logger:      logger,
	}
}

// App returns the app credentials, used to verify webhook signatures
func (c *Client) App() goshopify.App {
	return c.app
}

type connectionPayload struct {
	Edges []struct {
		Node json.RawMessage `json:"node"`
	} `json:"edges"`
	PageInfo domain.PageInfo `json:"pageInfo"`
}

// FetchPage returns one page of products, customers or orders
func (c *Client) FetchPage(ctx context.Context, shopDomain, accessToken string, req domain.PageRequest) (*domain.Page, error) {
	q, err := queryFor(req.EntityType)
	if err != nil {
		return nil, &domain.TransportError{Op: string(req.EntityType), Err: err}
	}

	vars := map[string]interface{}{"first": req.PageSize}
	if req.After != "" {
		vars["after"] = req.After
	}
	if req.Filter != "" {
		vars["query"] = req.Filter
	}

	var data map[string]*connectionPayload
	if err := c.query(ctx, shopDomain, accessToken, q, vars, &data); err != nil {
		return nil, err
	}

	conn := data[q.RootField]
	if conn == nil {
		return nil, &domain.TransportError{Op: q.Name, Err: fmt.Errorf("response has no %s connection", q.RootField)}
	}

	page := &domain.Page{
		Records:  make([]json.RawMessage, 0, len(conn.Edges)),
		PageInfo: conn.PageInfo,
	}
	for _, edge := range conn.Edges {
		page.Records = append(page.Records, edge.Node)
	}

	c.logger.Debug().
		Str("shop", shopDomain).
		Str("entityType", string(req.EntityType)).
		Int("records", len(page.Records)).
		Bool("hasNextPage", page.PageInfo.HasNextPage).
		Msg("Fetched page")
	return page, nil
}

// FetchShop returns the raw shop node
func (c *Client) FetchShop(ctx context.Context, shopDomain, accessToken string) (json.RawMessage, error) {
	var data struct {
		Shop json.RawMessage `json:"shop"`
	}
	if err := c.query(ctx, shopDomain, accessToken, shopQuery, nil, &data); err != nil {
		return nil, err
	}

	raw := bytes.TrimSpace(data.Shop)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &domain.TransportError{Op: shopQuery.Name, Err: errors.New("response has no shop")}
	}
	return data.Shop, nil
}

func (c *Client) query(ctx context.Context, shopDomain, accessToken string, q *Query, vars, resp interface{}) error {
	gql, err := c.newQuerier(shopDomain, accessToken)
	if err != nil {
		return &domain.TransportError{Op: q.Name, Err: err}
	}

	return c.retryConfig.do(ctx, func() (time.Duration, error) {
		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx, shopDomain); err != nil {
				return 0, &domain.TransportError{Op: q.Name, Err: err}
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		err := gql.Query(attemptCtx, q.Document, vars, resp)
		status, retryAfter := classify(err)
		c.observer.ObserveRequest(q.Name, status, time.Since(start).Seconds())
		if err == nil {
			return 0, nil
		}

		c.logger.Warn().
			Err(err).
			Str("shop", shopDomain).
			Str("operation", q.Name).
			Int("status", status).
			Msg("Shopify request failed")
		return retryAfter, &domain.TransportError{Op: q.Name, Status: status, Err: err}
	})
}

// classify extracts the HTTP status and any Retry-After hint from a
// go-shopify error
func classify(err error) (int, time.Duration) {
	if err == nil {
		return http.StatusOK, 0
	}
	var rateErr goshopify.RateLimitError
	if errors.As(err, &rateErr) {
		return http.StatusTooManyRequests, time.Duration(rateErr.RetryAfter) * time.Second
	}
	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		return respErr.Status, 0
	}
	return 0, 0
}
