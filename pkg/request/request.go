// Package request provides HTTP, an immutable builder of a single GET or POST request.
//
// The builder collects URL, method, redirect policy, user agent, headers and parameters.
// Parameters are rendered as a query string for GET and as a form body for POST.
// Each terminal method (Connection, InputStream, CloseInputStream, Content, JSON)
// builds a new *http.Request and sends it through the Sender, nothing is cached between calls.
//
// Example:
//
//	content, err := request.New("https://example.com/search").
//		AndParam("q", "hello world").
//		WithUserAgent("darkbot").
//		Content(ctx)
package request

import (
	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/darkbot-reloaded/go-httputil/pkg/client"
	"github.com/darkbot-reloaded/go-httputil/pkg/params"
)

const DefaultUserAgent = "Mozilla/5.0"

// HTTP is an immutable HTTP request definition, all With*/And* methods return a modified clone.
type HTTP struct {
	sender          Sender
	url             string
	method          Method
	followRedirects bool
	userAgent       string
	headers         *orderedmap.OrderedMap
	params          *params.Builder
}

// Header is a single header entry.
type Header struct {
	Key   string
	Value string
}

// New creates a GET request which follows redirects.
func New(url string) HTTP {
	return NewHTTP(url, MethodGet, true)
}

// NewWithMethod creates a request which follows redirects.
func NewWithMethod(url string, method Method) HTTP {
	return NewHTTP(url, method, true)
}

// NewWithRedirects creates a GET request.
func NewWithRedirects(url string, followRedirects bool) HTTP {
	return NewHTTP(url, MethodGet, followRedirects)
}

// NewHTTP creates a request, it is sent by the default client.Client.
func NewHTTP(url string, method Method, followRedirects bool) HTTP {
	return HTTP{
		sender:          client.New(),
		url:             url,
		method:          method,
		followRedirects: followRedirects,
		userAgent:       DefaultUserAgent,
	}
}

func (r HTTP) URL() string {
	return r.url
}

func (r HTTP) Method() Method {
	return r.method
}

func (r HTTP) FollowRedirects() bool {
	return r.followRedirects
}

func (r HTTP) UserAgent() string {
	return r.userAgent
}

// Headers returns header entries in insertion order.
func (r HTTP) Headers() []Header {
	if r.headers == nil {
		return nil
	}
	out := make([]Header, 0, len(r.headers.Keys()))
	for _, k := range r.headers.Keys() {
		v, _ := r.headers.Get(k)
		out = append(out, Header{Key: k, Value: v.(string)})
	}
	return out
}

// Params returns a copy of the parameters, or nil if no parameter has been set.
func (r HTTP) Params() *params.Builder {
	if r.params == nil {
		return nil
	}
	return r.params.Clone()
}

// WithSender sets the client used by the terminal methods.
func (r HTTP) WithSender(sender Sender) HTTP {
	r.sender = sender
	return r
}

func (r HTTP) WithUserAgent(userAgent string) HTTP {
	r.userAgent = userAgent
	return r
}

// AndHeader percent-encodes the key and the value and sets the header.
// An existing header with the same key is overwritten.
func (r HTTP) AndHeader(key, value string) HTTP {
	return r.AndRawHeader(params.Encode(key), params.Encode(value))
}

// AndRawHeader sets the header without encoding.
// An existing header with the same key is overwritten.
func (r HTTP) AndRawHeader(key, value string) HTTP {
	r.headers = cloneHeaders(r.headers)
	r.headers.Set(key, value)
	return r
}

// AndParam percent-encodes the key and the value and sets the parameter.
func (r HTTP) AndParam(key, value any) HTTP {
	r.params = r.cloneParams().Set(key, value)
	return r
}

// AndRawParam sets the parameter without encoding.
func (r HTTP) AndRawParam(key, value any) HTTP {
	r.params = r.cloneParams().SetRaw(key, value)
	return r
}

func (r HTTP) cloneParams() *params.Builder {
	if r.params == nil {
		return params.New()
	}
	return r.params.Clone()
}

func cloneHeaders(in *orderedmap.OrderedMap) *orderedmap.OrderedMap {
	out := orderedmap.New()
	if in == nil {
		return out
	}
	for _, k := range in.Keys() {
		v, _ := in.Get(k)
		out.Set(k, v)
	}
	return out
}
