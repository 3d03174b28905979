package backend

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
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/metrics"
	"github.com/fjod/go_cart/shop-admin/pkg/circuitbreaker"
)

const maxResponseBytes = 10 << 20

type Config struct {
	BaseURL            string
	Timeout            time.Duration
	ServiceToken       string
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration

	// Transport is wrapped with tracing. Nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the shop REST backend. Every call is made with the bearer
// token stored in the context by WithToken, or the service token when absent.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	breaker      *circuitbreaker.Breaker[*rawResponse]
	serviceToken string
	logger       *slog.Logger

	unauthorized atomic.Int64
}

type rawResponse struct {
	status int
	body   []byte
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		breaker: circuitbreaker.New[*rawResponse](circuitbreaker.Settings{
			Name:        "shop-backend",
			MaxFailures: uint32(max(cfg.BreakerMaxFailures, 1)),
			OpenTimeout: cfg.BreakerOpenTimeout,
			IsFailure:   countsAsFailure,
		}, logger),
		serviceToken: cfg.ServiceToken,
		logger:       logger.With("component", "backend"),
	}
}

// UnauthorizedCount is the number of 401 answers seen so far.
func (c *Client) UnauthorizedCount() int64 {
	return c.unauthorized.Load()
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	start := time.Now()
	res, err := c.breaker.Execute(func() (*rawResponse, error) {
		return c.roundTrip(ctx, req)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		err = fmt.Errorf("%s %s: %w", req.method, req.path, ErrCircuitOpen)
	}
	if err == nil {
		var msg string
		msg, err = unwrap(res.body, out)
		if errors.Is(err, ErrRejected) {
			err = &APIError{StatusCode: res.status, Method: req.method, Path: req.path, Message: msg}
		}
	}
	metrics.RecordBackendCall(req.op, outcomeOf(err), time.Since(start))
	return err
}

func (c *Client) roundTrip(ctx context.Context, req request) (*rawResponse, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", req.op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokenFor(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		httpReq.Header.Set(middleware.RequestIDHeader, reqID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", req.method, req.path, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %v", ErrTransport, req.method, req.path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     req.method,
			Path:       req.path,
			Message:    errorMessage(data),
		}
		if apiErr.Unauthorized() {
			c.unauthorized.Add(1)
			c.logger.WarnContext(ctx, "backend rejected credentials", "op", req.op, "path", req.path)
		}
		return nil, apiErr
	}

	return &rawResponse{status: resp.StatusCode, body: data}, nil
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token := TokenFromContext(ctx); token != "" {
		return token
	}
	return c.serviceToken
}

func getPage[T any](ctx context.Context, c *Client, req request) (domain.Page[T], error) {
	var page pageOf[T]
	if err := c.do(ctx, req, &page); err != nil {
		return domain.Page[T]{}, err
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	return domain.Page[T](page), nil
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("size", fmt.Sprint(size))
	return q
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
