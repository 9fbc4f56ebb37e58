package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/dto"
)

// notificationRelay carries encoded notification events between API nodes.
type notificationRelay interface {
	name() string
	send(ctx context.Context, payload []byte) error
	listen(ctx context.Context, deliver func([]byte)) error
}

type redisRelay struct {
	client  *redis.Client
	channel string
	logger  zerolog.Logger
}

func (r *redisRelay) name() string { return "redis" }

func (r *redisRelay) send(ctx context.Context, payload []byte) error {
	return r.client.Publish(ctx, r.channel, payload).Err()
}

func (r *redisRelay) listen(ctx context.Context, deliver func([]byte)) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	go func() {
		defer func() { _ = pubsub.Close() }()
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) && ctx.Err() == nil {
					r.logger.Error().Err(err).Str("channel", r.channel).Msg("notification redis subscription closed")
				}
				return
			}
			deliver([]byte(msg.Payload))
		}
	}()
	return nil
}

type natsRelay struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

func (r *natsRelay) name() string { return "nats" }

func (r *natsRelay) send(_ context.Context, payload []byte) error {
	return r.conn.Publish(r.subject, payload)
}

// listen uses a plain subscription so every node receives every event.
func (r *natsRelay) listen(ctx context.Context, deliver func([]byte)) error {
	sub, err := r.conn.Subscribe(r.subject, func(msg *nats.Msg) {
		deliver(msg.Data)
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			r.logger.Warn().Err(err).Str("subject", r.subject).Msg("failed to drain notification subscription")
		}
	}()
	return nil
}

func buildRelays(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) []notificationRelay {
	if channelBase == "" {
		return nil
	}

	var relays []notificationRelay
	if redisClient != nil {
		relays = append(relays, &redisRelay{
			client:  redisClient,
			channel: channelBase + ":notifications",
			logger:  logger,
		})
	}
	if natsConn != nil {
		relays = append(relays, &natsRelay{
			conn:    natsConn,
			subject: strings.ReplaceAll(channelBase, ":", ".") + ".notifications",
			logger:  logger,
		})
	}
	return relays
}

// fanout hands notifications to local stream subscribers. Slow subscribers
// miss events rather than blocking the publisher.
type fanout struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan dto.NotificationResponse
}

func newFanout() *fanout {
	return &fanout{subs: make(map[uint64]chan dto.NotificationResponse)}
}

func (f *fanout) add(buffer int) (uint64, chan dto.NotificationResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	ch := make(chan dto.NotificationResponse, buffer)
	f.subs[f.nextID] = ch
	return f.nextID, ch
}

func (f *fanout) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ch, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(ch)
	}
}

// deliver returns the number of subscribers that could not take the event.
func (f *fanout) deliver(notification dto.NotificationResponse) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	dropped := 0
	for _, ch := range f.subs {
		select {
		case ch <- notification:
		default:
			dropped++
		}
	}
	return dropped
}
