// Package publisher fans committed models out to live subscribers.
package publisher

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/internal/subscription"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
)

// BatchPublisher receives the models of a file before commit and emits them after.
type BatchPublisher interface {
	Name() string

	// Enqueue offers models of any type. Publishers keep the ones they emit, in order.
	Enqueue(models []domain.Model)

	// OnEnd drains the queue once the file is committed. It must not block on subscribers.
	OnEnd(ctx context.Context, file *types.RecordFile) error

	// OnError drops the queue of a file that was not committed.
	OnError(ctx context.Context)
}

var _ BatchPublisher = (*TypedPublisher[*domain.TopicMessage])(nil)

// TypedPublisher publishes the models of one domain type.
type TypedPublisher[T domain.Model] struct {
	name    string
	enabled atomic.Bool

	mu    sync.Mutex
	queue []T

	stream *Broadcast[T]
}

func NewTypedPublisher[T domain.Model](name string, enabled bool, bufferSize int) *TypedPublisher[T] {
	p := &TypedPublisher[T]{
		name:   name,
		stream: NewBroadcast[T](bufferSize),
	}
	p.enabled.Store(enabled)
	return p
}

func NewTopicMessagePublisher(enabled bool, bufferSize int) *TypedPublisher[*domain.TopicMessage] {
	return NewTypedPublisher[*domain.TopicMessage]("topic_messages", enabled, bufferSize)
}

func NewContractLogPublisher(enabled bool, bufferSize int) *TypedPublisher[*domain.ContractLog] {
	return NewTypedPublisher[*domain.ContractLog]("contract_logs", enabled, bufferSize)
}

func (p *TypedPublisher[T]) Name() string {
	return p.name
}

func (p *TypedPublisher[T]) Enabled() bool {
	return p.enabled.Load()
}

// SetEnabled takes effect on the next drain, including items already queued.
func (p *TypedPublisher[T]) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

func (p *TypedPublisher[T]) Enqueue(models []domain.Model) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range models {
		if v, ok := m.(T); ok {
			p.queue = append(p.queue, v)
		}
	}
}

func (p *TypedPublisher[T]) OnEnd(ctx context.Context, file *types.RecordFile) error {
	queue := p.drain()
	if len(queue) == 0 {
		return nil
	}
	if !p.enabled.Load() {
		logger.DebugContext(ctx, "Publisher disabled, dropped queued items",
			slogx.String("publisher", p.name),
			slogx.Int("count", len(queue)),
		)
		return nil
	}
	p.stream.Publish(queue...)
	logger.DebugContext(ctx, "Published committed items",
		slogx.String("publisher", p.name),
		slogx.String(logger.RecordFileKey, file.Name),
		slogx.Int("count", len(queue)),
	)
	return nil
}

func (p *TypedPublisher[T]) OnError(ctx context.Context) {
	if queue := p.drain(); len(queue) > 0 {
		logger.DebugContext(ctx, "Dropped items of an aborted file",
			slogx.String("publisher", p.name),
			slogx.Int("count", len(queue)),
		)
	}
}

func (p *TypedPublisher[T]) drain() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	queue := p.queue
	p.queue = nil
	return queue
}

func (p *TypedPublisher[T]) Subscribe() *Cursor[T] {
	return p.stream.Subscribe()
}

func (p *TypedPublisher[T]) SubscribeChan(ctx context.Context, ch chan<- T) *subscription.ClientSubscription[T] {
	return p.stream.SubscribeChan(ctx, ch)
}

// Close ends every subscription after the retained items are read.
func (p *TypedPublisher[T]) Close() {
	p.stream.Close()
}
