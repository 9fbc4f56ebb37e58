package handler

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ideaforge-api/internal/dto"
)

func TestWriteNotificationEventFraming(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	err := writeNotificationEvent(w, dto.NotificationResponse{ID: "n-1", Type: "analysis_complete", Title: "Done", Message: "Scored"})
	require.NoError(t, err)

	lines := strings.Split(buf.String(), "\n")
	require.Equal(t, "event: notification", lines[0])
	require.True(t, strings.HasPrefix(lines[1], `data: {"id":"n-1","type":"analysis_complete"`))
	require.True(t, strings.HasSuffix(buf.String(), "\n\n"))
}

func TestWriteKeepAliveIsComment(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, writeKeepAlive(w))
	require.True(t, strings.HasPrefix(buf.String(), ": keep-alive "))
	require.True(t, strings.HasSuffix(buf.String(), "\n\n"))
}

func TestKeepAliveInterval(t *testing.T) {
	require.Equal(t, 15*time.Second, (&NotificationHandler{}).keepAlive())
	require.Equal(t, 30*time.Second, (&NotificationHandler{timeout: time.Minute}).keepAlive())
}

func TestPumpForwardsUntilStreamCloses(t *testing.T) {
	stream := make(chan dto.NotificationResponse, 2)
	stream <- dto.NotificationResponse{ID: "one"}
	stream <- dto.NotificationResponse{ID: "two"}
	close(stream)

	var sent []string
	err := pump(context.Background(), stream, time.Hour,
		func(n dto.NotificationResponse) error { sent = append(sent, n.ID); return nil },
		func() error { return nil },
	)
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two"}, sent)
}

func TestPumpStopsOnPingFailure(t *testing.T) {
	broken := errors.New("broken pipe")
	err := pump(context.Background(), make(chan dto.NotificationResponse), time.Millisecond,
		func(dto.NotificationResponse) error { return nil },
		func() error { return broken },
	)
	require.ErrorIs(t, err, broken)
}

func TestPumpStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pump(ctx, make(chan dto.NotificationResponse), time.Hour,
		func(dto.NotificationResponse) error { return nil },
		func() error { return nil },
	)
	require.NoError(t, err)
}
