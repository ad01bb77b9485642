// Package archive fetches planet rows from the NASA Exoplanet Archive TAP
// service.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"exodash/internal/domain"
)

// Default configuration values.
const (
	DefaultEndpoint = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"
	DefaultTimeout  = 30 * time.Second
	DefaultRPS      = 1.0
	DefaultBurst    = 2

	maxBodyBytes  = 64 << 20
	maxErrorBytes = 512
)

// Fetch outcomes reported to the Recorder.
const (
	OutcomeSuccess   = "success"
	OutcomeHTTPError = "http_error"
	OutcomeTransport = "transport_error"
	OutcomeTimeout   = "timeout"
	OutcomeDecode    = "decode_error"
)

// Recorder observes archive fetches. Implemented by observability.Collector.
type Recorder interface {
	ObserveFetch(outcome string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFetch(string, time.Duration) {}

// Client issues synchronous TAP queries. It is safe for concurrent use.
type Client struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	recorder Recorder
	tracer   trace.Tracer
	logger   *slog.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithRateLimit caps outbound requests. A non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithTracer sets the tracer used for fetch spans.
func WithTracer(t trace.Tracer) ClientOption {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a TAP client for endpoint. An empty endpoint selects
// DefaultEndpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		limiter:  rate.NewLimiter(rate.Limit(DefaultRPS), DefaultBurst),
		recorder: nopRecorder{},
		tracer:   otel.Tracer("exodash/archive"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the TAP endpoint URL.
func (c *Client) Endpoint() string { return c.endpoint }

// BuildQuery returns the ADQL query selecting the first limit planets with
// positive mass, period, semi-major axis and star mass, shortest period first.
func BuildQuery(limit int) string {
	return fmt.Sprintf("SELECT TOP %d pl_name, hostname, pl_bmasse, pl_orbper, pl_orbsmax, pl_orbeccen, st_mass "+
		"FROM ps WHERE pl_bmasse > 0 AND pl_orbper > 0 AND pl_orbsmax > 0 AND st_mass > 0 "+
		"ORDER BY pl_orbper ASC", limit)
}

// RequestURL returns the full GET URL for limit.
func (c *Client) RequestURL(limit int) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse archive endpoint: %w", err)
	}
	q := u.Query()
	q.Set("query", BuildQuery(limit))
	q.Set("format", "json")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch runs one query for at most limit rows. It never retries: any
// non-200 status, transport failure, timeout or undecodable body is returned
// as a *domain.UpstreamError.
func (c *Client) Fetch(ctx context.Context, limit int) (rows []RawRow, err error) {
	if err := domain.ValidateLimit(limit); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "archive.fetch", trace.WithAttributes(
		attribute.Int("archive.limit", limit),
	))
	start := time.Now()
	outcome := OutcomeSuccess
	defer func() {
		c.recorder.ObserveFetch(outcome, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetAttributes(attribute.Int("archive.rows", len(rows)))
		}
		span.End()
	}()

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			outcome = OutcomeTimeout
			return nil, &domain.UpstreamError{
				Message: "waiting for archive rate limit: " + werr.Error(),
				Timeout: true,
				Err:     werr,
			}
		}
	}

	rawURL, err := c.RequestURL(limit)
	if err != nil {
		outcome = OutcomeTransport
		return nil, &domain.UpstreamError{Message: err.Error(), Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		outcome = OutcomeTransport
		return nil, &domain.UpstreamError{Message: "build archive request: " + err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			outcome = OutcomeTimeout
			return nil, &domain.UpstreamError{Message: "archive request timed out", Timeout: true, Err: err}
		}
		outcome = OutcomeTransport
		return nil, &domain.UpstreamError{Message: "archive request failed: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		outcome = OutcomeHTTPError
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		c.logger.WarnContext(ctx, "archive returned non-200 status",
			"status", resp.StatusCode, "body", string(snippet))
		return nil, domain.ErrUpstream(resp.StatusCode, "archive returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&rows); err != nil {
		if isTimeout(err) {
			outcome = OutcomeTimeout
			return nil, &domain.UpstreamError{Message: "archive response timed out", StatusCode: resp.StatusCode, Timeout: true, Err: err}
		}
		outcome = OutcomeDecode
		return nil, &domain.UpstreamError{
			Message:    "decode archive response: " + err.Error(),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	c.logger.DebugContext(ctx, "archive fetch complete", "limit", limit, "rows", len(rows), "duration", time.Since(start))
	return rows, nil
}

// FetchRecords fetches rows and keeps only the complete ones.
func (c *Client) FetchRecords(ctx context.Context, limit int) ([]domain.PlanetRecord, int, error) {
	rows, err := c.Fetch(ctx, limit)
	if err != nil {
		return nil, 0, err
	}
	records, dropped := Complete(rows)
	if dropped > 0 {
		c.logger.InfoContext(ctx, "dropped incomplete archive rows", "dropped", dropped, "kept", len(records))
	}
	return records, dropped, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
