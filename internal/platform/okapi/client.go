// Package okapi is the HTTP client for peer modules reached through the
// platform gateway. Calls carry the tenant, user and request id of the
// request context.
package okapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"authlinks/internal/platform/config"
	"authlinks/pkg/platform/circuit"
	"authlinks/pkg/platform/sentinel"
	"authlinks/pkg/requestcontext"
)

const (
	HeaderTenant    = "X-Okapi-Tenant"
	HeaderUserID    = "X-Okapi-User-Id"
	HeaderRequestID = "X-Okapi-Request-Id"
	HeaderURL       = "X-Okapi-Url"

	maxErrorBody = 512
)

// Client performs JSON GET calls against the gateway.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuit.Breaker
	tracer  trace.Tracer
	logger  *slog.Logger
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func New(cfg config.Okapi, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: circuit.New("okapi"),
		tracer:  otel.Tracer("authlinks/okapi"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON decodes the response of GET path?query into dest. A 404 maps to
// sentinel.ErrNotFound; transport failures, 5xx responses and an open
// breaker map to sentinel.ErrUnavailable.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, dest any) error {
	ctx, span := c.tracer.Start(ctx, "okapi.get", trace.WithAttributes(
		attribute.String("http.path", path),
		attribute.String("tenant", requestcontext.TenantID(ctx).String()),
	))
	defer span.End()

	err := c.get(ctx, path, query, dest)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("okapi %s: circuit open: %w", path, sentinel.ErrUnavailable)
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	c.setHeaders(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("okapi %s: %w: %w", path, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		c.recordFailure(ctx)
		return fmt.Errorf("okapi %s: status %d: %s: %w", path, resp.StatusCode, readSnippet(resp.Body), sentinel.ErrUnavailable)
	case resp.StatusCode == http.StatusNotFound:
		c.recordSuccess(ctx)
		return fmt.Errorf("okapi %s: %w", path, sentinel.ErrNotFound)
	case resp.StatusCode >= http.StatusBadRequest:
		c.recordSuccess(ctx)
		return fmt.Errorf("okapi %s: status %d: %s", path, resp.StatusCode, readSnippet(resp.Body))
	}
	c.recordSuccess(ctx)

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderURL, c.baseURL)
	if tenant := requestcontext.TenantID(ctx); !tenant.IsNil() {
		req.Header.Set(HeaderTenant, tenant.String())
	}
	if user := requestcontext.UserID(ctx); !user.IsNil() {
		req.Header.Set(HeaderUserID, user.String())
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		req.Header.Set(HeaderRequestID, requestID)
	}
}

func (c *Client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "circuit closed", "breaker", c.breaker.Name())
	}
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}
