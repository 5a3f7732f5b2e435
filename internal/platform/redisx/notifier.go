package redisx

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

const DefaultChannel = "learnhub:generation-jobs"

// Notifier wakes idle workers when a job is enqueued. Wake signals are hints:
// workers still poll, so a lost signal only delays a claim until the next poll.
type Notifier interface {
	Notify(ctx context.Context, jobType string) error
	Wake() <-chan struct{}
	Close() error
}

// LocalNotifier wakes workers in the same process.
type LocalNotifier struct {
	wake chan struct{}
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{wake: make(chan struct{}, 1)}
}

func (n *LocalNotifier) Notify(ctx context.Context, jobType string) error {
	n.signal()
	return nil
}

func (n *LocalNotifier) Wake() <-chan struct{} { return n.wake }

func (n *LocalNotifier) Close() error { return nil }

func (n *LocalNotifier) signal() {
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

type redisNotifier struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	local   *LocalNotifier

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRedisNotifier connects to addr and starts forwarding channel messages into Wake.
func NewRedisNotifier(ctx context.Context, log *logger.Logger, addr, channel string) (Notifier, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	n := &redisNotifier{
		log:     log.With("service", "RedisJobNotifier", "channel", channel),
		rdb:     rdb,
		channel: channel,
		local:   NewLocalNotifier(),
	}
	if err := n.startForwarder(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return n, nil
}

func (n *redisNotifier) Notify(ctx context.Context, jobType string) error {
	if err := n.rdb.Publish(ctx, n.channel, jobType).Err(); err != nil {
		// Still wake local workers.
		n.local.signal()
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (n *redisNotifier) Wake() <-chan struct{} { return n.local.Wake() }

func (n *redisNotifier) startForwarder(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	sub := n.rdb.Subscribe(ctx, n.channel)
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	n.mu.Lock()
	n.cancel = cancel
	n.done = make(chan struct{})
	n.mu.Unlock()

	go func() {
		defer close(n.done)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					n.log.Warn("redis subscription closed")
					return
				}
				n.log.Debug("job wake received", "job_type", m.Payload)
				n.local.signal()
			}
		}
	}()
	return nil
}

func (n *redisNotifier) Close() error {
	n.mu.Lock()
	cancel, done := n.cancel, n.done
	n.cancel = nil
	n.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	return n.rdb.Close()
}
