// Package client provides the transport used by the request builder.
//
// Client sends exactly one *http.Request per Send call.
// Connections are not reused, requests are not retried and there is no client timeout,
// a blocking call can be abandoned only by cancelling its context.
//
// Client is an immutable value, all With*/And* methods return a modified clone.
// Tracing and telemetry hooks can be registered by the AndTrace and WithTelemetry methods.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	otelMetric "go.opentelemetry.io/otel/metric"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/darkbot-reloaded/go-httputil/pkg/client/counter"
	"github.com/darkbot-reloaded/go-httputil/pkg/client/trace"
	"github.com/darkbot-reloaded/go-httputil/pkg/client/trace/otel"
)

// Client is a default and configurable transport based on the Go native http.Client.
type Client struct {
	transport      http.RoundTripper
	traceFactories []trace.Factory
}

// New creates new HTTP Client.
func New() Client {
	return Client{transport: DefaultTransport()}
}

// WithTransport returns a clone of the Client with a HTTP transport set.
func (c Client) WithTransport(transport http.RoundTripper) Client {
	if transport == nil {
		panic(fmt.Errorf("transport cannot be nil"))
	}
	c.transport = transport
	return c
}

// AndTrace returns a clone of the Client with Trace hooks added.
// Hooks of multiple factories are composed, they are invoked in the registration order.
func (c Client) AndTrace(fn trace.Factory) Client {
	c.traceFactories = append(c.traceFactories[:len(c.traceFactories):len(c.traceFactories)], fn)
	return c
}

// WithTelemetry returns a clone of the Client with OpenTelemetry tracing and metrics.
func (c Client) WithTelemetry(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider, opts ...otel.Option) Client {
	return c.AndTrace(otel.NewTrace(tracerProvider, meterProvider, opts...))
}

// Send method sends the HTTP request and returns the HTTP response.
//
// If followRedirects is false, a 3xx response is returned as it is.
// The caller must close the response body.
func (c Client) Send(ctx context.Context, req *http.Request, followRedirects bool) (*http.Response, error) {
	// Method cannot be called on an empty value
	if c.transport == nil {
		panic(fmt.Errorf("client value is not initialized"))
	}

	// Init trace
	var tc *trace.ClientTrace
	for _, fn := range c.traceFactories {
		var t *trace.ClientTrace
		ctx, t = fn(ctx, req)
		if t != nil {
			t.Compose(tc)
			tc = t
		}
	}
	if tc != nil {
		ctx = httptrace.WithClientTrace(ctx, &tc.ClientTrace)
	}
	req = req.WithContext(ctx)

	// Setup native client
	nativeClient := http.Client{
		Transport:     roundTripper{trace: tc, wrapped: c.transport}, // wrapped transport for trace
		CheckRedirect: redirectPolicy(followRedirects),
	}

	// Send request
	startedAt := time.Now()
	res, err := nativeClient.Do(req)

	// Handle send error
	if err != nil {
		err = handleSendError(startedAt, req, err)
		if tc != nil && tc.RequestProcessed != nil {
			tc.RequestProcessed(0, err)
		}
		return nil, err
	}

	// Trace request processed, when the body is closed
	if tc != nil && tc.RequestProcessed != nil {
		res.Body = counter.NewReadCloser(res.Body, tc.RequestProcessed)
	}

	return res, nil
}

func redirectPolicy(followRedirects bool) func(req *http.Request, via []*http.Request) error {
	if followRedirects {
		// Default policy of the http.Client, max 10 redirects
		return nil
	}
	return func(_ *http.Request, _ []*http.Request) error {
		return http.ErrUseLastResponse
	}
}

func handleSendError(startedAt time.Time, req *http.Request, err error) error {
	// Timeout
	var netErr net.Error
	if deadline, ok := req.Context().Deadline(); ok && errors.Is(err, context.DeadlineExceeded) {
		err = urlError(req, fmt.Errorf("%w: timeout after %s", context.DeadlineExceeded, deadline.Sub(startedAt)))
	} else if errors.Is(err, context.Canceled) {
		err = urlError(req, fmt.Errorf("%w: canceled after %s", context.Canceled, time.Since(startedAt)))
	} else if errors.As(err, &netErr) && netErr.Timeout() {
		err = urlError(req, fmt.Errorf("timeout after %s", time.Since(startedAt)))
	}

	// Url error
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = fmt.Errorf(`request %s "%s" failed: %w`, strings.ToUpper(urlErr.Op), urlErr.URL, urlErr.Err)
	}

	return err
}

// roundTripper wraps a http.RoundTripper and adds trace functionality.
// It is called for each redirect.
type roundTripper struct {
	trace   *trace.ClientTrace
	wrapped http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Trace request start
	if rt.trace != nil && rt.trace.HTTPRequestStart != nil {
		rt.trace.HTTPRequestStart(req)
	}

	// Send
	res, err := rt.wrapped.RoundTrip(req)

	// Trace request done
	if rt.trace != nil && rt.trace.HTTPRequestDone != nil {
		rt.trace.HTTPRequestDone(res, err)
	}

	return res, err
}

func urlError(req *http.Request, err error) *url.Error {
	return &url.Error{Op: req.Method, URL: req.URL.String(), Err: err}
}
