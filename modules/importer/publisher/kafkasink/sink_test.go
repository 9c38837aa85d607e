package kafkasink

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/config"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/gaze-network/ledger-importer/modules/importer/publisher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r})
	}
	return results
}

func (f *fakeProducer) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeProducer) Records() []*kgo.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*kgo.Record(nil), f.records...)
}

func TestSinkProducesCommittedMessages(t *testing.T) {
	ctx := context.Background()
	pub := publisher.NewTopicMessagePublisher(true, 16)
	producer := &fakeProducer{}
	sink := NewWithProducer(producer, "topic-messages")

	done := make(chan error, 1)
	cursor := pub.Subscribe()
	go func() {
		done <- sink.Run(ctx, cursor)
	}()

	topic := entityid.MustNew(0, 0, 1001)
	pub.Enqueue([]domain.Model{
		&domain.TopicMessage{ConsensusTimestamp: 10, TopicId: topic, Message: []byte("a"), SequenceNumber: 1},
		&domain.Transaction{ConsensusTimestamp: 10},
		&domain.TopicMessage{ConsensusTimestamp: 11, TopicId: topic, Message: []byte("b"), SequenceNumber: 2},
	})
	require.NoError(t, pub.OnEnd(ctx, &types.RecordFile{Name: "f1"}))

	require.Eventually(t, func() bool { return len(producer.Records()) == 2 }, time.Second, 5*time.Millisecond)
	pub.Close()
	require.NoError(t, <-done)

	records := producer.Records()
	assert.Equal(t, "0.0.1001", string(records[0].Key))
	assert.Equal(t, "topic-messages", records[0].Topic)

	var decoded domain.TopicMessage
	require.NoError(t, json.Unmarshal(records[1].Value, &decoded))
	assert.Equal(t, int64(2), decoded.SequenceNumber)
	assert.Equal(t, []byte("b"), decoded.Message)

	sink.Close()
	assert.True(t, producer.closed)
}

func TestNewRequiresBrokersAndTopic(t *testing.T) {
	_, err := New(configWith(nil, "t"))
	assert.Error(t, err)
	_, err = New(configWith([]string{"127.0.0.1:9092"}, ""))
	assert.Error(t, err)
}

func configWith(brokers []string, topic string) config.KafkaConfig {
	return config.KafkaConfig{Enabled: true, Brokers: brokers, Topic: topic}
}
