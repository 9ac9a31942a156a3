package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ZapTracer logs stages of the request as structured entries.
// Progress is logged on the debug level, failures on the warn level.
func ZapTracer(logger *zap.Logger) Factory {
	var idGenerator uint64
	return func(ctx context.Context, request *http.Request) (context.Context, *ClientTrace) {
		requestID := atomic.AddUint64(&idGenerator, 1)
		log := logger.With(
			zap.Uint64("request.id", requestID),
			zap.String("request.method", request.Method),
			zap.String("request.url", request.URL.String()),
		)

		var startTime time.Time
		var statusCode int

		t := &ClientTrace{}
		t.HTTPRequestStart = func(r *http.Request) {
			startTime = time.Now()
			log.Debug("http request started", zap.String("http.url", r.URL.String()))
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			if err != nil {
				log.Warn("http request failed", zap.Duration("duration", time.Since(startTime)), zap.Error(err))
				return
			}
			statusCode = r.StatusCode
			log.Debug("http request done", zap.Int("http.status", r.StatusCode), zap.Duration("duration", time.Since(startTime)))
		}
		t.RequestProcessed = func(readBytes int64, err error) {
			if err != nil {
				log.Warn("request failed", zap.Int("http.status", statusCode), zap.Int64("bytes", readBytes), zap.Error(err))
				return
			}
			log.Debug("request processed", zap.Int("http.status", statusCode), zap.Int64("bytes", readBytes))
		}
		return ctx, t
	}
}
