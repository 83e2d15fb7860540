// Package proxy forwards allowed requests to the backend service, attaching
// verified identity claims as trusted headers and normalizing failures.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/spec-kit/talent-gateway/internal/domain"
	"github.com/spec-kit/talent-gateway/internal/events"
	"github.com/spec-kit/talent-gateway/internal/observability"
)

// ErrUpstreamUnavailable reports a network-level failure (refused connection,
// timeout, DNS, open breaker). Callers map it to one fixed 500 response; raw
// network error text never reaches them.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// Identity propagation headers. The backend trusts them because they arrive
// over the gateway's private path; inbound values are always discarded.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"
	HeaderRequestID = "X-Request-Id"
)

// Request describes one proxied call. Transient and request-scoped.
type Request struct {
	Method      string
	Path        string
	RawQuery    string
	Body        []byte
	ContentType string
	Identity    *domain.Identity
	RequestID   string
	// Fallback replaces unparseable upstream error bodies. Each resource
	// handler sets its own message.
	Fallback string
}

// Response carries the backend answer for relay to the caller.
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

// Dispatcher proxies requests to the backend base URL. All proxied resources
// share this one dispatch contract; only the target path, required role and
// fallback message vary per route.
type Dispatcher struct {
	baseURL    string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
}

// NewDispatcher builds a dispatcher with a circuit breaker over the backend.
func NewDispatcher(baseURL string, timeout time.Duration, logger *zap.Logger, metrics *observability.Metrics, eventBus events.Dispatcher) *Dispatcher {
	d := &Dispatcher{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
		dispatcher: eventBus,
	}

	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 100,
		Interval:    5 * time.Second,
		Timeout:     3 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("backend breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if eventBus != nil {
				_ = eventBus.Publish(context.Background(), events.Event{
					ID:        uuid.NewString(),
					Type:      events.EventBreakerChanged,
					Timestamp: time.Now(),
					Payload:   events.BreakerChangedPayload{From: from.String(), To: to.String()},
				})
			}
		},
	})

	return d
}

// Dispatch forwards the request and returns the backend response, 2xx or
// not, for verbatim relay. It returns ErrUpstreamUnavailable only for
// network-level failures. Mutating calls are never retried here: the
// backend's idempotency semantics are unknown to the gateway.
func (d *Dispatcher) Dispatch(ctx context.Context, preq Request) (*Response, error) {
	targetURL := d.baseURL + preq.Path
	if preq.RawQuery != "" {
		targetURL += "?" + preq.RawQuery
	}

	var bodyReader io.Reader
	if len(preq.Body) > 0 {
		bodyReader = bytes.NewReader(preq.Body)
	}

	req, err := http.NewRequestWithContext(ctx, preq.Method, targetURL, bodyReader)
	if err != nil {
		return nil, ErrUpstreamUnavailable
	}
	d.setOutboundHeaders(req, preq)

	start := time.Now()
	result, err := d.breaker.Execute(func() (interface{}, error) {
		return d.client.Do(req) //nolint:bodyclose // closed below after type assert
	})
	if err != nil {
		d.metrics.RecordUpstream(preq.Path, -1, time.Since(start))
		d.logger.Error("upstream dispatch failed",
			zap.String("method", preq.Method),
			zap.String("path", preq.Path),
			zap.Error(err))
		d.publishFailure(preq.Path, err)
		return nil, ErrUpstreamUnavailable
	}

	resp := result.(*http.Response)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		d.metrics.RecordUpstream(preq.Path, -1, time.Since(start))
		d.publishFailure(preq.Path, err)
		return nil, ErrUpstreamUnavailable
	}
	d.metrics.RecordUpstream(preq.Path, resp.StatusCode, time.Since(start))

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Response{
			StatusCode:  resp.StatusCode,
			Body:        d.shapeErrorBody(body, preq.Fallback),
			ContentType: "application/json",
		}, nil
	}

	return &Response{StatusCode: resp.StatusCode, Body: body, ContentType: contentType}, nil
}

// setOutboundHeaders builds the trusted header set. Identity headers come
// only from the session-resolved identity; nothing client-supplied survives
// under the same names.
func (d *Dispatcher) setOutboundHeaders(req *http.Request, preq Request) {
	if preq.ContentType != "" {
		req.Header.Set("Content-Type", preq.ContentType)
	}
	if preq.RequestID != "" {
		req.Header.Set(HeaderRequestID, preq.RequestID)
	}

	req.Header.Del(HeaderUserID)
	req.Header.Del(HeaderUserEmail)
	req.Header.Del(HeaderUserRole)
	if preq.Identity != nil {
		req.Header.Set(HeaderUserID, preq.Identity.SubjectID)
		req.Header.Set(HeaderUserEmail, preq.Identity.Email)
		req.Header.Set(HeaderUserRole, string(preq.Identity.Role))
	}
}

// shapeErrorBody passes parseable JSON error bodies through verbatim and
// substitutes the route's fallback message otherwise.
func (d *Dispatcher) shapeErrorBody(body []byte, fallback string) []byte {
	if len(body) > 0 && json.Valid(body) {
		return body
	}
	if fallback == "" {
		fallback = "Upstream request failed"
	}
	shaped, _ := json.Marshal(map[string]string{"error": fallback})
	return shaped
}

func (d *Dispatcher) publishFailure(path string, cause error) {
	if d.dispatcher == nil {
		return
	}
	_ = d.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUpstreamFailed,
		Timestamp: time.Now(),
		Payload:   events.UpstreamFailedPayload{Path: path, Cause: cause.Error()},
	})
}
