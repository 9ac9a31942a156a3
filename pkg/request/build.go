package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/darkbot-reloaded/go-httputil/pkg/client"
)

// FinalURL returns the URL which is requested.
// Parameters of a GET request are appended as a query string,
// but only if the URL has no query yet, otherwise they are ignored.
func (r HTTP) FinalURL() string {
	if r.method == MethodGet && r.params != nil && !strings.Contains(r.url, "?") {
		return r.url + "?" + r.params.String()
	}
	return r.url
}

// Request creates the *http.Request without sending it.
func (r HTTP) Request(ctx context.Context) (*http.Request, error) {
	// Form body
	var body io.Reader
	var bodyLength int
	if r.method == MethodPost && r.params != nil {
		payload := r.params.Bytes()
		body = bytes.NewReader(payload)
		bodyLength = len(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method.String(), r.FinalURL(), body)
	if err != nil {
		return nil, fmt.Errorf(`url "%s" is not valid: %w`, r.url, err)
	}

	// User agent first, so it can be overwritten by a header entry
	if err := setHeader(req, "User-Agent", r.userAgent); err != nil {
		return nil, err
	}
	for _, h := range r.Headers() {
		if err := setHeader(req, h.Key, h.Value); err != nil {
			return nil, err
		}
	}

	if body != nil {
		req.ContentLength = int64(bodyLength)
		req.Header.Set("Content-Length", strconv.Itoa(bodyLength))
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", client.ContentTypeFormURLEncoded)
		}
	}

	return req, nil
}

func setHeader(req *http.Request, key, value string) error {
	if !httpguts.ValidHeaderFieldName(key) {
		return fmt.Errorf(`header name "%s" is not valid`, key)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf(`value of the header "%s" is not valid`, key)
	}
	req.Header.Set(key, value)
	return nil
}
