// Package trace extends the httptrace.ClientTrace and adds additional request hooks.
// A custom ClientTrace definition can be registered in the client.Client by the AndTrace method.
package trace

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"reflect"
)

// Factory creates ClientTrace hooks for a request.
type Factory func(ctx context.Context, request *http.Request) (context.Context, *ClientTrace)

// ClientTrace is a set of hooks to run at various stages of an outgoing request.
type ClientTrace struct {
	httptrace.ClientTrace // native, low level trace
	// HTTPRequestStart is called when the request begins. It includes redirects.
	HTTPRequestStart func(request *http.Request)
	// HTTPRequestDone is called when the response headers are received or the request failed. It includes redirects.
	HTTPRequestDone func(response *http.Response, err error)
	// RequestProcessed is called when the response body is closed or the request failed.
	// The readBytes is the number of body bytes read by the caller.
	RequestProcessed func(readBytes int64, err error)
}

// Compose modifies t such that it respects the previously-registered hooks in old.
// Hooks of old are called first.
// Copy of httptrace.compose.
func (t *ClientTrace) Compose(old *ClientTrace) {
	if old == nil {
		return
	}
	tv := reflect.ValueOf(t).Elem()
	ov := reflect.ValueOf(old).Elem()
	composeHooks(tv, ov)
}

func composeHooks(tv, ov reflect.Value) {
	structType := tv.Type()
	for i := 0; i < structType.NumField(); i++ {
		tf := tv.Field(i)
		of := ov.Field(i)

		// Embedded httptrace.ClientTrace
		if tf.Kind() == reflect.Struct {
			composeHooks(tf, of)
			continue
		}

		hookType := tf.Type()
		if hookType.Kind() != reflect.Func {
			continue
		}
		if of.IsNil() {
			continue
		}
		if tf.IsNil() {
			tf.Set(of)
			continue
		}

		// Make a copy of tf for tf to call. (Otherwise it
		// creates a recursive call cycle and stack overflows)
		tfCopy := reflect.ValueOf(tf.Interface())
		ofCopy := reflect.ValueOf(of.Interface())

		// We need to call both tf and of in some order.
		newFunc := reflect.MakeFunc(hookType, func(args []reflect.Value) []reflect.Value {
			ofCopy.Call(args)
			return tfCopy.Call(args)
		})
		tf.Set(newFunc)
	}
}
