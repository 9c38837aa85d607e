// Package kafkasink forwards published topic messages to a Kafka topic.
package kafkasink

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/modules/importer/config"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/publisher"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the part of *kgo.Client the sink uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

var _ Producer = (*kgo.Client)(nil)

type Sink struct {
	producer Producer
	topic    string
}

func New(conf config.KafkaConfig, opts ...kgo.Opt) (*Sink, error) {
	if len(conf.Brokers) == 0 || conf.Topic == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "kafka sink requires brokers and topic")
	}
	kopts := []kgo.Opt{
		kgo.SeedBrokers(conf.Brokers...),
		kgo.DefaultProduceTopic(conf.Topic),
	}
	if conf.ClientID != "" {
		kopts = append(kopts, kgo.ClientID(conf.ClientID))
	}
	client, err := kgo.NewClient(append(kopts, opts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kafka client")
	}
	return NewWithProducer(client, conf.Topic), nil
}

func NewWithProducer(producer Producer, topic string) *Sink {
	return &Sink{
		producer: producer,
		topic:    topic,
	}
}

// Run produces every message read from cursor until ctx is done or the stream is closed.
// Lagging skips the messages the broadcast no longer retains.
func (s *Sink) Run(ctx context.Context, cursor *publisher.Cursor[*domain.TopicMessage]) error {
	ctx = logger.WithContext(ctx, slogx.String("package", "kafkasink"), slogx.String("topic", s.topic))
	for {
		msg, err := cursor.Next(ctx)
		switch {
		case errors.Is(err, publisher.ErrLagged):
			logger.WarnContext(ctx, "Kafka sink lagged behind the topic message stream", slogx.Error(err))
			continue
		case errors.Is(err, errs.Closed), errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			return errors.WithStack(err)
		}

		record, err := s.record(msg)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
			return errors.Wrapf(err, "failed to produce topic message %d", msg.ConsensusTimestamp)
		}
	}
}

// record keys messages by topic so a topic's messages stay ordered within one partition.
func (s *Sink) record(msg *domain.TopicMessage) (*kgo.Record, error) {
	value, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode topic message")
	}
	return &kgo.Record{
		Topic: s.topic,
		Key:   []byte(msg.TopicId.String()),
		Value: value,
	}, nil
}

func (s *Sink) Close() {
	s.producer.Close()
}
