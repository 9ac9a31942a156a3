// Package params provides Builder, an ordered set of key/value pairs
// rendered as an "application/x-www-form-urlencoded" payload.
//
// The payload is used either as a POST body or as a GET query string.
// Values can be stored percent-encoded (Set) or exactly as given (SetRaw),
// so already escaped tokens, for example signatures, are not encoded twice.
package params

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"
)

// Builder holds parameters in insertion order.
// Overwriting an existing key replaces its value and keeps its original position.
//
// Builder is not safe for concurrent use.
type Builder struct {
	values *orderedmap.OrderedMap
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{values: orderedmap.New()}
}

// Create creates a Builder seeded with one entry, the key and value are stored as given.
func Create(key, value any) *Builder {
	return New().SetRaw(key, value)
}

// Encode percent-encodes string form of the value using UTF-8, a space is encoded as "+".
func Encode(value any) string {
	return url.QueryEscape(toString(value))
}

// Set encodes the key and the value and sets or overrides the entry.
func (b *Builder) Set(key, value any) *Builder {
	return b.SetRaw(Encode(key), Encode(value))
}

// SetRaw sets or overrides the entry without encoding.
func (b *Builder) SetRaw(key, value any) *Builder {
	b.init()
	b.values.Set(toString(key), toString(value))
	return b
}

// Get returns the stored value of the key, as it is rendered.
func (b *Builder) Get(key string) (string, bool) {
	if b.values == nil {
		return "", false
	}
	v, found := b.values.Get(key)
	if !found {
		return "", false
	}
	return v.(string), true
}

// Keys returns stored keys in the rendering order.
func (b *Builder) Keys() []string {
	if b.values == nil {
		return nil
	}
	return b.values.Keys()
}

// Len returns number of entries.
func (b *Builder) Len() int {
	return len(b.Keys())
}

// Clone returns a deep copy of the Builder.
func (b *Builder) Clone() *Builder {
	out := New()
	for _, k := range b.Keys() {
		v, _ := b.Get(k)
		out.values.Set(k, v)
	}
	return out
}

// Bytes renders all entries as "key1=value1&key2=value2" in UTF-8.
func (b *Builder) Bytes() []byte {
	return []byte(b.String())
}

// String renders all entries as "key1=value1&key2=value2".
func (b *Builder) String() string {
	var out strings.Builder
	for i, k := range b.Keys() {
		if i > 0 {
			out.WriteByte('&')
		}
		v, _ := b.Get(k)
		out.WriteString(k)
		out.WriteByte('=')
		out.WriteString(v)
	}
	return out.String()
}

func (b *Builder) init() {
	if b.values == nil {
		b.values = orderedmap.New()
	}
}

// toString converts a key or a value to the string.
// Values without a cast conversion, for example slices or structs, use the default fmt format.
func toString(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
