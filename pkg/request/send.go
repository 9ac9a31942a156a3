package request

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-multierror"

	"github.com/darkbot-reloaded/go-httputil/pkg/client"
	"github.com/darkbot-reloaded/go-httputil/pkg/client/decode"
	"github.com/darkbot-reloaded/go-httputil/pkg/ioutils"
)

// Connection sends the request and returns the response, whatever its status code.
// The caller must close the response body.
func (r HTTP) Connection(ctx context.Context) (*http.Response, error) {
	_, res, err := r.send(ctx)
	return res, err
}

// InputStream sends the request and returns the response body.
// A status code >= 400 is returned as the HTTPError.
// The caller must close the stream.
func (r HTTP) InputStream(ctx context.Context) (io.ReadCloser, error) {
	res, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// CloseInputStream sends the request and closes the response body without reading it.
func (r HTTP) CloseInputStream(ctx context.Context) error {
	stream, err := r.InputStream(ctx)
	if err != nil {
		return err
	}
	return stream.Close()
}

// Content sends the request and returns the response body as a UTF-8 string.
// The body is decoded according to the Content-Encoding header.
func (r HTTP) Content(ctx context.Context) (string, error) {
	res, err := r.open(ctx)
	if err != nil {
		return "", err
	}

	body, err := decode.Decode(res.Body, res.Header.Get("Content-Encoding"))
	if err != nil {
		return "", closeBody(res.Body, err)
	}

	content, err := ioutils.Read(body)
	if err = closeBody(body, err); err != nil {
		return "", err
	}
	return content, nil
}

// JSON sends the request and decodes the JSON response body to the target.
// The response must have a JSON content type.
func (r HTTP) JSON(ctx context.Context, target any) error {
	res, err := r.open(ctx)
	if err != nil {
		return err
	}

	if contentType := res.Header.Get("Content-Type"); !client.IsJSONContentType(contentType) {
		return closeBody(res.Body, fmt.Errorf(`unexpected content type "%s", expected JSON`, contentType))
	}

	body, err := decode.Decode(res.Body, res.Header.Get("Content-Encoding"))
	if err != nil {
		return closeBody(res.Body, err)
	}

	if err := json.NewDecoder(body).Decode(target); err != nil {
		err = fmt.Errorf(`cannot decode JSON response: %w`, err)
		return closeBody(body, err)
	}
	return closeBody(body, nil)
}

// open sends the request and converts an error status code to the HTTPError.
func (r HTTP) open(ctx context.Context) (*http.Response, error) {
	req, res, err := r.send(ctx)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, closeBody(res.Body, newHTTPError(req, res))
	}
	return res, nil
}

func (r HTTP) send(ctx context.Context) (*http.Request, *http.Response, error) {
	// Method cannot be called on an empty value
	if r.sender == nil {
		panic(fmt.Errorf("request value is not initialized"))
	}

	req, err := r.Request(ctx)
	if err != nil {
		return nil, nil, err
	}

	res, err := r.sender.Send(ctx, req, r.followRedirects)
	if err != nil {
		return req, nil, err
	}
	return req, res, nil
}

// closeBody closes the body and combines the close error with the err, if any.
func closeBody(body io.Closer, err error) error {
	closeErr := body.Close()
	switch {
	case closeErr == nil:
		return err
	case err == nil:
		return closeErr
	default:
		return multierror.Append(err, closeErr)
	}
}
