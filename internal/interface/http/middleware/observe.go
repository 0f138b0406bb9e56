package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/pkg/logger"
	"github.com/xiebiao/libadmin/pkg/metrics"
	"github.com/xiebiao/libadmin/pkg/response"
	"github.com/xiebiao/libadmin/pkg/tracing"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const tracerName = "libadmin/http"

// RequestLogger assigns a request id, stores a request-scoped logger for
// response.Logger and logs every request when it completes.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	base = logger.OrNop(base)
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		log := base.With(zap.String("request_id", id))
		if traceID := tracing.TraceID(c.Request.Context()); traceID != "" {
			log = log.With(zap.String("trace_id", traceID))
		}
		c.Set(response.LoggerKey, log)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		log.Info("http request", fields...)
	}
}

// Metrics records console traffic. Paths are route templates so ids do
// not blow up label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncGauge(metrics.HTTPRequestsInProgress)
		defer metrics.DecGauge(metrics.HTTPRequestsInProgress)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		})
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration,
			map[string]string{"method": c.Request.Method, "path": path},
			time.Since(start).Seconds())
	}
}

// Tracing starts a server span per request, continuing the caller's trace.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := tracing.Extract(c.Request.Context(), c.Request.Header)
		ctx, span := tracing.StartSpan(ctx, tracerName, c.Request.Method+" "+c.FullPath(),
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("url.path", c.Request.URL.Path))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		span.SetAttributes(attribute.Int("http.response.status_code", c.Writer.Status()))
		tracing.End(span, nil)
	}
}
