package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/observability"
)

var latencyBuckets = []struct {
	limit time.Duration
	label string
}{
	{25 * time.Millisecond, "<=25ms"},
	{100 * time.Millisecond, "<=100ms"},
	{500 * time.Millisecond, "<=500ms"},
	{2 * time.Second, "<=2s"},
	{10 * time.Second, "<=10s"},
}

// Observability records Prometheus metrics and a structured access log for API requests.
// The metrics endpoint itself is not measured.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		if path := c.Path(); !strings.HasPrefix(path, "/api") || strings.HasSuffix(path, "/metrics") {
			return err
		}

		status := responseStatus(c, err)
		route, method, code := routeTemplate(c), c.Method(), strconv.Itoa(status)

		observability.HTTPRequests().WithLabelValues(method, route, code).Inc()
		observability.HTTPLatency().WithLabelValues(method, route).Observe(elapsed.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.HTTPErrors().WithLabelValues(method, route, code).Inc()
		}

		event := logger.WithLevel(accessLevel(status)).
			Str("correlation_id", GetCorrelationID(c)).
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Int("bytes_out", len(c.Response().Body())).
			Float64("latency_ms", float64(elapsed)/float64(time.Millisecond)).
			Str("latency_bucket", latencyBucket(elapsed))
		if subject := SubjectFromContext(c); subject != "" {
			event = event.Str("subject", subject)
		}
		event.Msg("request completed")

		return err
	}
}

// responseStatus prefers the code of a *fiber.Error the error handler has not written yet.
func responseStatus(c *fiber.Ctx, err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return c.Response().StatusCode()
}

func accessLevel(status int) zerolog.Level {
	switch {
	case status >= fiber.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= fiber.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func routeTemplate(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return c.Path()
}

func latencyBucket(elapsed time.Duration) string {
	for _, bucket := range latencyBuckets {
		if elapsed <= bucket.limit {
			return bucket.label
		}
	}
	return ">10s"
}
