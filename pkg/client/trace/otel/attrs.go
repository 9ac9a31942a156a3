package otel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const (
	maskedAttrValue = "****"
)

type attributes struct {
	config config
	// definition attributes for span and metrics
	definition []attribute.KeyValue
	// definitionExtra attributes for span only
	definitionExtra []attribute.KeyValue
	// httpRequest attributes for span and metrics
	httpRequest []attribute.KeyValue
	// httpRequestExtra attributes for span only
	httpRequestExtra []attribute.KeyValue
	// httpResponse attributes for span and metrics
	httpResponse []attribute.KeyValue
	// httpResponseExtra attributes for span only
	httpResponseExtra []attribute.KeyValue
	// httpResponseError attributes for metrics
	httpResponseError []attribute.KeyValue
}

func newAttributes(cfg config, req *http.Request) *attributes {
	out := &attributes{config: cfg}
	reqURL := req.URL

	out.definition = []attribute.KeyValue{
		attribute.String("definition.method", req.Method),
		attribute.String("definition.url.scheme", reqURL.Scheme),
		attribute.String("definition.url.host", reqURL.Host),
		attribute.String("definition.url.path", reqURL.Path),
	}
	out.definitionExtra = append(
		[]attribute.KeyValue{attribute.String("definition.url.full", cfg.redactURL(reqURL))},
		cfg.headerAttributes("definition.header.", req.Header)...,
	)
	return out
}

func (v *attributes) SetFromRequest(req *http.Request) {
	if req == nil {
		v.httpRequest = nil
		v.httpRequestExtra = nil
		return
	}

	v.httpRequest = []attribute.KeyValue{
		semconv.HTTPMethodKey.String(req.Method),
		semconv.HTTPURLKey.String(v.config.redactURL(req.URL)),
		semconv.NetPeerNameKey.String(req.URL.Hostname()),
		semconv.HTTPUserAgentKey.String(req.UserAgent()),
	}
	v.httpRequestExtra = v.config.headerAttributes("http.header.", req.Header)
}

func (v *attributes) SetFromResponse(res *http.Response, err error) {
	if res == nil {
		v.httpResponse = nil
		v.httpResponseExtra = nil
	} else {
		v.httpResponse = []attribute.KeyValue{semconv.HTTPStatusCodeKey.Int(res.StatusCode)}
		v.httpResponseExtra = v.config.headerAttributes("http.response.header.", res.Header)
	}

	var netErr net.Error
	errors.As(err, &netErr)
	v.httpResponseError = []attribute.KeyValue{
		attribute.Bool("http.response.isSuccess", isSuccess(res, err)),
		attribute.Bool("http.response.isRedirection", isRedirection(res)),
		attribute.Bool("http.response.error.has", err != nil),
		attribute.Bool("http.response.error.net", netErr != nil),
		attribute.Bool("http.response.error.timeout", netErr != nil && netErr.Timeout()),
		attribute.Bool("http.response.error.cancelled", errors.Is(err, context.Canceled)),
		attribute.Bool("http.response.error.deadline_exceeded", errors.Is(err, context.DeadlineExceeded)),
	}
}

func (c config) headerAttributes(prefix string, header http.Header) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for key, values := range header {
		key = strings.ToLower(key)
		value := strings.Join(values, ";")
		if _, found := c.redactedHeaders[key]; found {
			value = maskedAttrValue
		}
		attrs = append(attrs, attribute.String(prefix+key, value))
	}
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].Key < attrs[j].Key
	})
	return attrs
}

// redactURL masks the password and redacted query parameters.
func (c config) redactURL(in *url.URL) string {
	if in == nil {
		return ""
	}
	clone := *in
	if len(c.redactedQueryParams) > 0 && clone.RawQuery != "" {
		parts := strings.Split(clone.RawQuery, "&")
		for i, part := range parts {
			key, _, hasValue := strings.Cut(part, "=")
			if _, found := c.redactedQueryParams[strings.ToLower(key)]; found && hasValue {
				parts[i] = key + "=" + maskedAttrValue
			}
		}
		clone.RawQuery = strings.Join(parts, "&")
	}
	return clone.Redacted()
}
