package config

import (
	"runtime"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("NormalizesPolicy", func(t *testing.T) {
		c := Default()
		c.PartialDataPolicy = " skip "
		require.NoError(t, c.Validate())
		assert.Equal(t, PartialDataPolicySkip, c.PartialDataPolicy)
	})
	t.Run("InvalidPolicy", func(t *testing.T) {
		c := Default()
		c.PartialDataPolicy = "LENIENT"
		assert.True(t, errors.Is(c.Validate(), errs.InvalidArgument))
	})
	t.Run("FlushConcurrencyFloor", func(t *testing.T) {
		c := Default()
		c.FlushConcurrency = 0
		require.NoError(t, c.Validate())
		assert.Equal(t, 1, c.FlushConcurrency)

		c.FlushConcurrency = -1
		require.NoError(t, c.Validate())
		assert.Equal(t, runtime.GOMAXPROCS(0), c.FlushConcurrency)
	})
	t.Run("ShardOutOfRange", func(t *testing.T) {
		c := Default()
		c.Shard = 1 << 10
		assert.True(t, errors.Is(c.Validate(), errs.InvalidArgument))
	})
	t.Run("KafkaRequiresBrokers", func(t *testing.T) {
		c := Default()
		c.Publisher.Kafka.Enabled = true
		assert.True(t, errors.Is(c.Validate(), errs.InvalidArgument))
	})
}

func TestErrataWindow(t *testing.T) {
	e := ErrataConfig{Enabled: true, Start: 10, End: 20}
	assert.True(t, e.Contains(10))
	assert.True(t, e.Contains(20))
	assert.False(t, e.Contains(21))
	e.Enabled = false
	assert.False(t, e.Contains(15))
}
