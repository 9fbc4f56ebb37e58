package middleware

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLatencyBucket(t *testing.T) {
	require.Equal(t, "<=25ms", latencyBucket(10*time.Millisecond))
	require.Equal(t, "<=100ms", latencyBucket(26*time.Millisecond))
	require.Equal(t, "<=2s", latencyBucket(time.Second))
	require.Equal(t, ">10s", latencyBucket(11*time.Second))
}

func TestAccessLevel(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, accessLevel(fiber.StatusCreated))
	require.Equal(t, zerolog.WarnLevel, accessLevel(fiber.StatusTooManyRequests))
	require.Equal(t, zerolog.ErrorLevel, accessLevel(fiber.StatusServiceUnavailable))
}
