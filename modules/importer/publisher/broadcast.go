package publisher

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/internal/subscription"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
)

// ErrLagged is returned once to a subscriber that fell further behind than the broadcast capacity.
// The cursor then resumes at the oldest retained item.
var ErrLagged = errors.New("subscriber lagged behind")

// Broadcast is a single producer, multi consumer stream. Items are kept in a bounded ring and
// every subscriber reads at its own cursor, so Publish never waits for a slow subscriber.
type Broadcast[T any] struct {
	mu     sync.Mutex
	ring   []T
	next   uint64 // sequence of the next published item
	closed bool

	// notify is closed and replaced on every Publish and on Close.
	notify chan struct{}
}

func NewBroadcast[T any](capacity int) *Broadcast[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Broadcast[T]{
		ring:   make([]T, capacity),
		notify: make(chan struct{}),
	}
}

func (b *Broadcast[T]) Publish(items ...T) {
	if len(items) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, item := range items {
		b.ring[b.next%uint64(len(b.ring))] = item
		b.next++
	}
	close(b.notify)
	b.notify = make(chan struct{})
}

// Close ends the stream. Subscribers receive the retained items, then errs.Closed.
func (b *Broadcast[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.notify)
}

// Subscribe returns a cursor positioned after the last published item.
func (b *Broadcast[T]) Subscribe() *Cursor[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &Cursor[T]{broadcast: b, next: b.next}
}

func (b *Broadcast[T]) oldest() uint64 {
	if capacity := uint64(len(b.ring)); b.next > capacity {
		return b.next - capacity
	}
	return 0
}

// Cursor is one subscriber's position in a Broadcast. A Cursor must not be shared between goroutines.
type Cursor[T any] struct {
	broadcast *Broadcast[T]
	next      uint64
}

// Next blocks until the next item is published, ctx is done or the broadcast is closed.
func (c *Cursor[T]) Next(ctx context.Context) (T, error) {
	var zero T
	b := c.broadcast
	for {
		b.mu.Lock()
		if oldest := b.oldest(); c.next < oldest {
			skipped := oldest - c.next
			c.next = oldest
			b.mu.Unlock()
			return zero, errors.Wrapf(ErrLagged, "skipped %d items", skipped)
		}
		if c.next < b.next {
			item := b.ring[c.next%uint64(len(b.ring))]
			c.next++
			b.mu.Unlock()
			return item, nil
		}
		if b.closed {
			b.mu.Unlock()
			return zero, errors.Wrap(errs.Closed, "broadcast is closed")
		}
		wait := b.notify
		b.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return zero, errors.WithStack(ctx.Err())
		}
	}
}

// SubscribeChan forwards the stream to ch until ctx is done, the client unsubscribes or the
// broadcast is closed. Lag is reported on the subscription's error channel.
func (b *Broadcast[T]) SubscribeChan(ctx context.Context, ch chan<- T) *subscription.ClientSubscription[T] {
	cursor := b.Subscribe()
	sub := subscription.NewSubscription(ch)

	ctx = logger.WithContext(ctx, slogx.Stringer("subscription_id", sub.ID()))
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-sub.Done():
		case <-ctx.Done():
		}
		cancel()
	}()
	go func() {
		defer cancel()
		for {
			item, err := cursor.Next(ctx)
			switch {
			case err == nil:
				if err := sub.Send(ctx, item); err != nil {
					return
				}
			case errors.Is(err, ErrLagged):
				logger.WarnContext(ctx, "Broadcast subscriber lagged, skipped to the oldest retained item")
				if err := sub.SendError(ctx, err); err != nil {
					return
				}
			case errors.Is(err, errs.Closed):
				sub.CloseSend()
				return
			default:
				sub.Unsubscribe()
				return
			}
		}
	}()
	return sub.Client()
}
