package otel_test

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	export "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/darkbot-reloaded/go-httputil/pkg/client"
	"github.com/darkbot-reloaded/go-httputil/pkg/client/trace/otel"
)

const (
	testTraceID    = 0xabcd
	testSpanIDBase = 0x1000
)

type testIDGenerator struct {
	spanID uint16
}

func (g *testIDGenerator) NewIDs(ctx context.Context) (otelTrace.TraceID, otelTrace.SpanID) {
	traceID := toTraceID(testTraceID)
	return traceID, g.NewSpanID(ctx, traceID)
}

func (g *testIDGenerator) NewSpanID(_ context.Context, _ otelTrace.TraceID) otelTrace.SpanID {
	g.spanID++
	return toSpanID(testSpanIDBase + g.spanID)
}

func toTraceID(in uint16) otelTrace.TraceID { //nolint: unparam
	tmp := make([]byte, 16)
	binary.BigEndian.PutUint16(tmp, in)
	return *(*[16]byte)(tmp)
}

func toSpanID(in uint16) otelTrace.SpanID {
	tmp := make([]byte, 8)
	binary.BigEndian.PutUint16(tmp, in)
	return *(*[8]byte)(tmp)
}

type testTelemetry struct {
	traceExporter  *tracetest.InMemoryExporter
	tracerProvider *trace.TracerProvider
	metricExporter *export.Exporter
	meterProvider  *metric.MeterProvider
}

func newTestTelemetry(t *testing.T, ctx context.Context) *testTelemetry {
	t.Helper()

	// Setup tracing
	res, err := resource.New(ctx)
	require.NoError(t, err)
	traceExporter := tracetest.NewInMemoryExporter()
	tracerProvider := trace.NewTracerProvider(
		trace.WithSyncer(traceExporter),
		trace.WithResource(res),
		trace.WithIDGenerator(&testIDGenerator{}),
	)

	// Setup metrics
	metricExporter, err := export.New()
	require.NoError(t, err)
	meterProvider := metric.NewMeterProvider(
		metric.WithReader(metricExporter),
		metric.WithResource(res),
	)

	return &testTelemetry{
		traceExporter:  traceExporter,
		tracerProvider: tracerProvider,
		metricExporter: metricExporter,
		meterProvider:  meterProvider,
	}
}

func TestSimpleRealRequest(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	tel := newTestTelemetry(t, ctx)
	c := client.New().WithTelemetry(tel.tracerProvider, tel.meterProvider)

	// Run request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/index", nil)
	require.NoError(t, err)
	res, err := c.Send(ctx, req, true)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	assert.Equal(t, "OK", string(body))

	// Assert spans
	spans := actualSpans(tel.traceExporter)
	var spanNames []string
	for _, span := range spans {
		spanNames = append(spanNames, span.Name)

		// All spans must be finished!
		assert.NotZero(t, span.StartTime)
		assert.NotZero(t, span.EndTime)
	}
	assert.Contains(t, spanNames, "darkbot.http.client.request")
	assert.Contains(t, spanNames, "http.request")
	assert.Contains(t, spanNames, "http.connect")

	// Assert metrics
	assert.Equal(t, []string{
		"darkbot.http.client.request.body_bytes",
		"darkbot.http.client.request.duration",
		"darkbot.http.client.request.in_flight",
		"darkbot.http.request.duration",
		"darkbot.http.request.in_flight",
	}, actualMetricNames(t, ctx, tel.metricExporter))
}

func TestMockedRedirects(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mocked responses (1x redirect, OK)
	var traceParents []string
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", `=~^https://example\.com/redirect1`, func(req *http.Request) (*http.Response, error) {
		traceParents = append(traceParents, req.Header.Get("traceparent"))
		header := make(http.Header)
		header.Set("Location", "https://example.com/index")
		return &http.Response{StatusCode: http.StatusMovedPermanently, Header: header}, nil
	})
	transport.RegisterResponder("GET", `https://example.com/index`, func(req *http.Request) (*http.Response, error) {
		traceParents = append(traceParents, req.Header.Get("traceparent"))
		return httpmock.NewStringResponse(http.StatusOK, "OK"), nil
	})

	tel := newTestTelemetry(t, ctx)
	c := client.New().
		WithTransport(transport).
		WithTelemetry(
			tel.tracerProvider,
			tel.meterProvider,
			otel.WithRedactedQueryParam("secret"),
			otel.WithRedactedHeaders("X-Token"),
			otel.WithPropagators(propagation.TraceContext{}),
		)

	// Run request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://example.com/redirect1?foo=bar&secret=my-secret", nil)
	require.NoError(t, err)
	req.Header.Set("X-Token", "my-secret")
	req.Header.Set("Accept", "text/plain")
	res, err := c.Send(ctx, req, true)
	require.NoError(t, err)
	_, err = io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	// Trace context is propagated to each request
	require.Len(t, traceParents, 2)
	for _, v := range traceParents {
		assert.NotEmpty(t, v)
	}

	// Root span wraps both HTTP requests
	spans := actualSpans(tel.traceExporter)
	root := findSpans(spans, "darkbot.http.client.request")
	require.Len(t, root, 1)
	httpSpans := findSpans(spans, "http.request")
	require.Len(t, httpSpans, 2)
	for _, span := range httpSpans {
		assert.Equal(t, root[0].SpanContext.SpanID(), span.Parent.SpanID())
	}
	assert.Equal(t, otelTrace.SpanKindClient, root[0].SpanKind)
	assert.Equal(t, codes.Unset, root[0].Status.Code)

	rootAttrs := spanAttributes(root[0])
	assert.Equal(t, "GET", rootAttrs["definition.method"])
	assert.Equal(t, "https", rootAttrs["definition.url.scheme"])
	assert.Equal(t, "example.com", rootAttrs["definition.url.host"])
	assert.Equal(t, "/redirect1", rootAttrs["definition.url.path"])
	assert.Equal(t, "https://example.com/redirect1?foo=bar&secret=****", rootAttrs["definition.url.full"])
	assert.Equal(t, "****", rootAttrs["definition.header.x-token"])
	assert.Equal(t, "text/plain", rootAttrs["definition.header.accept"])
	assert.Equal(t, "200", rootAttrs["http.status_code"])
	assert.Equal(t, "2", rootAttrs["http.read_bytes"])

	firstAttrs := spanAttributes(httpSpans[0])
	assert.Equal(t, "https://example.com/redirect1?foo=bar&secret=****", firstAttrs["http.url"])
	assert.Equal(t, "301", firstAttrs["http.status_code"])
	secondAttrs := spanAttributes(httpSpans[1])
	assert.Equal(t, "https://example.com/index", secondAttrs["http.url"])
	assert.Equal(t, "200", secondAttrs["http.status_code"])
}

func TestMockedRequestFailed(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", `https://example.com/index`, httpmock.NewErrorResponder(fmt.Errorf("some network error")))
	transport.RegisterResponder("GET", `https://example.com/missing`, httpmock.NewStringResponder(http.StatusNotFound, "not found"))

	tel := newTestTelemetry(t, ctx)
	c := client.New().WithTransport(transport).WithTelemetry(tel.tracerProvider, tel.meterProvider)

	// Transport error
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://example.com/index", nil)
	require.NoError(t, err)
	_, err = c.Send(ctx, req, true)
	require.Error(t, err)

	// Error status code
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, "https://example.com/missing", nil)
	require.NoError(t, err)
	res, err := c.Send(ctx, req, true)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	spans := actualSpans(tel.traceExporter)
	root := findSpans(spans, "darkbot.http.client.request")
	require.Len(t, root, 2)
	assert.Equal(t, codes.Error, root[0].Status.Code)
	assert.Equal(t, `request GET "https://example.com/index" failed: some network error`, root[0].Status.Description)
	assert.Equal(t, codes.Unset, root[1].Status.Code)

	httpSpans := findSpans(spans, "http.request")
	require.Len(t, httpSpans, 2)
	assert.Equal(t, codes.Error, httpSpans[0].Status.Code)
	assert.Equal(t, "some network error", httpSpans[0].Status.Description)
	assert.Equal(t, codes.Error, httpSpans[1].Status.Code)
	assert.Equal(t, "HTTP status code: 404 Not Found", httpSpans[1].Status.Description)
}

func actualSpans(exporter *tracetest.InMemoryExporter) tracetest.SpanStubs {
	spans := exporter.GetSpans()
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].SpanContext.SpanID().String() < spans[j].SpanContext.SpanID().String()
	})
	return spans
}

func findSpans(spans tracetest.SpanStubs, name string) tracetest.SpanStubs {
	var out tracetest.SpanStubs
	for _, span := range spans {
		if span.Name == name {
			out = append(out, span)
		}
	}
	return out
}

func spanAttributes(span tracetest.SpanStub) map[string]string {
	out := make(map[string]string)
	for _, kv := range span.Attributes {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func actualMetricNames(t *testing.T, ctx context.Context, reader metric.Reader) []string {
	t.Helper()

	all := &metricdata.ResourceMetrics{}
	assert.NoError(t, reader.Collect(ctx, all))
	require.Len(t, all.ScopeMetrics, 1)

	var names []string
	for _, m := range all.ScopeMetrics[0].Metrics {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}
