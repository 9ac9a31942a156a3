// Package decode unwraps a response body according to its Content-Encoding header.
package decode

import (
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// Decode returns a reader of the decoded body.
// Closing the returned reader closes the original body.
// Unknown encodings are returned as they are.
func Decode(body io.ReadCloser, contentEncoding string) (io.ReadCloser, error) {
	contentEncoding = strings.ToLower(strings.TrimSpace(contentEncoding))
	switch contentEncoding {
	case "gzip", "x-gzip":
		if v, err := gzip.NewReader(body); err == nil {
			return readCloser{Reader: v, closers: []io.Closer{v, body}}, nil
		} else {
			return nil, fmt.Errorf("cannot decode gzip: %w", err)
		}
	case "deflate":
		if v, err := zlib.NewReader(body); err == nil {
			return readCloser{Reader: v, closers: []io.Closer{v, body}}, nil
		} else {
			return nil, fmt.Errorf("cannot decode deflate: %w", err)
		}
	case "br":
		return readCloser{Reader: brotli.NewReader(body), closers: []io.Closer{body}}, nil
	default:
		return body, nil
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (v readCloser) Close() error {
	var firstErr error
	for _, c := range v.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
