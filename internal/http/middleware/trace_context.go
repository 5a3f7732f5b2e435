package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/learnhub-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext stamps every request with a request id and a trace id. The
// trace id prefers the caller's header, then the active span, then a fresh uuid.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, req := ctxutil.Ensure(c.Request.Context())

		req.RequestID = strings.TrimSpace(c.GetHeader(headerRequestID))
		if req.RequestID == "" {
			req.RequestID = uuid.NewString()
		}
		span := trace.SpanFromContext(ctx)
		req.TraceID = strings.TrimSpace(c.GetHeader(headerTraceID))
		if req.TraceID == "" && span.SpanContext().HasTraceID() {
			req.TraceID = span.SpanContext().TraceID().String()
		}
		if req.TraceID == "" {
			req.TraceID = uuid.NewString()
		}
		span.SetAttributes(attribute.String("http.request_id", req.RequestID))

		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(headerTraceID, req.TraceID)
		c.Writer.Header().Set(headerRequestID, req.RequestID)
		c.Next()
	}
}
