// Package middleware 提供与追踪相关的 HTTP 中间件
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dumeirei/hotel-booking-core/internal/common/response"
)

const defaultServiceName = "hotel-booking-core"

// TracingConfig 追踪中间件配置
type TracingConfig struct {
	ServiceName string
	SkipPaths   []string
}

// Tracing 为每个请求创建服务端 span，并把 traceparent 写回响应头
func Tracing(cfg *TracingConfig) gin.HandlerFunc {
	name := defaultServiceName
	skip := map[string]struct{}{}
	if cfg != nil {
		if cfg.ServiceName != "" {
			name = cfg.ServiceName
		}
		for _, p := range cfg.SkipPaths {
			skip[p] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		// provider 与 propagator 在请求时读取，tracing.Init 可晚于路由构建
		propagator := otel.GetTextMapPropagator()
		parent := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := routeOf(c)
		ctx, span := otel.Tracer(name).Start(parent, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(requestAttributes(c, route)...),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		propagator.Inject(ctx, propagation.HeaderCarrier(c.Writer.Header()))

		c.Next()

		finishSpan(span, c)
	}
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}

func requestAttributes(c *gin.Context, route string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.HTTPMethod(c.Request.Method),
		semconv.HTTPRoute(route),
		semconv.HTTPTarget(c.Request.URL.Path),
		semconv.NetHostName(c.Request.Host),
		attribute.String("http.client_ip", c.ClientIP()),
	}
	if id := c.GetString(response.ContextKeyRequestID); id != "" {
		attrs = append(attrs, attribute.String("http.request_id", id))
	}
	return attrs
}

// finishSpan 记录状态码与处理器错误，5xx 标记为失败
func finishSpan(span trace.Span, c *gin.Context) {
	status := c.Writer.Status()
	span.SetAttributes(semconv.HTTPStatusCode(status))
	for _, e := range c.Errors {
		span.RecordError(e.Err)
	}
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// GetTraceID 从上下文获取追踪 ID
func GetTraceID(c *gin.Context) string {
	sc := trace.SpanFromContext(c.Request.Context()).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
