package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription(t *testing.T) {
	t.Run("CloseSendDeliversBufferedValues", func(t *testing.T) {
		ch := make(chan int)
		sub := NewSubscription(ch)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			require.NoError(t, sub.Send(ctx, i))
		}
		sub.CloseSend()

		received := make([]int, 0, 3)
		for len(received) < 3 {
			select {
			case v := <-ch:
				received = append(received, v)
			case <-time.After(time.Second):
				t.Fatal("timeout waiting for value")
			}
		}
		assert.Equal(t, []int{0, 1, 2}, received)

		select {
		case <-sub.Done():
		case <-time.After(time.Second):
			t.Fatal("subscription not done after CloseSend")
		}
		assert.True(t, sub.IsClosed())
	})
	t.Run("SendAfterUnsubscribe", func(t *testing.T) {
		ch := make(chan int)
		sub := NewSubscription(ch)
		sub.Unsubscribe()

		// fill the buffer, the next send must observe the closed subscription
		var err error
		for i := 0; i <= SubscriptionBufferSize; i++ {
			if err = sub.Send(context.Background(), i); err != nil {
				break
			}
		}
		assert.True(t, errors.Is(err, errs.Closed))
	})
	t.Run("ClientSharesID", func(t *testing.T) {
		sub := NewSubscription(make(chan int))
		defer sub.Unsubscribe()
		assert.Equal(t, sub.ID(), sub.Client().ID())
	})
}
