package request

import (
	"context"
	"net/http"
)

// Sender represents an HTTP client, the client.Client is a default implementation using the standard net/http package.
type Sender interface {
	// Send method sends the request and returns the response.
	// If followRedirects is false, a 3xx response is returned as it is.
	Send(ctx context.Context, req *http.Request, followRedirects bool) (*http.Response, error)
}
