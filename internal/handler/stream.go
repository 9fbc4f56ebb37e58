package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"time"

	"github.com/noah-isme/ideaforge-api/internal/dto"
)

// pump forwards notifications to send and calls ping on every tick until the
// context ends, the stream closes, or a write fails.
func pump(ctx context.Context, stream <-chan dto.NotificationResponse, interval time.Duration, send func(dto.NotificationResponse) error, ping func() error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case notification, ok := <-stream:
			if !ok {
				return nil
			}
			if err := send(notification); err != nil {
				return err
			}
		case <-ticker.C:
			if err := ping(); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func writeNotificationEvent(w *bufio.Writer, notification dto.NotificationResponse) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	_, _ = w.WriteString("event: notification\ndata: ")
	_, _ = w.Write(payload)
	_, _ = w.WriteString("\n\n")
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	_, _ = w.WriteString(": keep-alive " + time.Now().UTC().Format(time.RFC3339) + "\n\n")
	return w.Flush()
}
