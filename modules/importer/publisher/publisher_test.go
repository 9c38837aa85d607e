package publisher

import (
	"context"
	"testing"

	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messages(timestamps ...int64) []domain.Model {
	out := make([]domain.Model, 0, len(timestamps)*2)
	for _, ts := range timestamps {
		out = append(out, &domain.Transaction{ConsensusTimestamp: ts}, &domain.TopicMessage{ConsensusTimestamp: ts})
	}
	return out
}

func timestamps(t *testing.T, c *Cursor[*domain.TopicMessage], n int) []int64 {
	t.Helper()
	out := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, next(t, c).ConsensusTimestamp)
	}
	return out
}

func TestTypedPublisherEmitsAfterOnEnd(t *testing.T) {
	ctx := context.Background()
	p := NewTopicMessagePublisher(true, 16)
	c := p.Subscribe()

	p.Enqueue(messages(3, 1, 2))

	pending, cancel := context.WithCancel(ctx)
	cancel()
	_, err := c.Next(pending)
	require.Error(t, err, "nothing is emitted before the file is committed")

	require.NoError(t, p.OnEnd(ctx, &types.RecordFile{Name: "f1"}))
	assert.Equal(t, []int64{3, 1, 2}, timestamps(t, c, 3), "insertion order is kept")
}

func TestTypedPublisherOnErrorDropsQueue(t *testing.T) {
	ctx := context.Background()
	p := NewTopicMessagePublisher(true, 16)
	c := p.Subscribe()

	p.Enqueue(messages(1, 2))
	p.OnError(ctx)
	p.Enqueue(messages(3))
	require.NoError(t, p.OnEnd(ctx, &types.RecordFile{Name: "f2"}))

	assert.Equal(t, []int64{3}, timestamps(t, c, 1))
}

func TestTypedPublisherDisabledDropsQueued(t *testing.T) {
	ctx := context.Background()
	p := NewTopicMessagePublisher(true, 16)
	c := p.Subscribe()

	// queued while enabled, disabled before the drain
	p.Enqueue(messages(1, 2))
	p.SetEnabled(false)
	require.NoError(t, p.OnEnd(ctx, &types.RecordFile{Name: "f1"}))

	p.SetEnabled(true)
	p.Enqueue(messages(3))
	require.NoError(t, p.OnEnd(ctx, &types.RecordFile{Name: "f2"}))

	assert.Equal(t, []int64{3}, timestamps(t, c, 1))
	assert.True(t, p.Enabled())
}

func TestContractLogPublisherFiltersType(t *testing.T) {
	ctx := context.Background()
	p := NewContractLogPublisher(true, 4)
	c := p.Subscribe()

	p.Enqueue([]domain.Model{
		&domain.TopicMessage{ConsensusTimestamp: 1},
		&domain.ContractLog{ConsensusTimestamp: 1, Index: 0},
		&domain.ContractLog{ConsensusTimestamp: 1, Index: 1},
	})
	require.NoError(t, p.OnEnd(ctx, &types.RecordFile{Name: "f1"}))

	assert.Equal(t, 0, next(t, c).Index)
	assert.Equal(t, 1, next(t, c).Index)
	assert.Equal(t, "contract_logs", p.Name())
}
