package subscription

import (
	"github.com/google/uuid"
)

// ClientSubscription is the consumer's handle on a Subscription. It can only stop it, never send.
type ClientSubscription[T any] struct {
	subscription *Subscription[T]
}

func (c *ClientSubscription[T]) ID() uuid.UUID {
	return c.subscription.ID()
}

// Unsubscribe stops forwarding and waits until no further value is sent to the client channel.
func (c *ClientSubscription[T]) Unsubscribe() {
	c.subscription.Unsubscribe()
}

// Err reports producer errors, such as a lagged cursor, without ending the subscription.
func (c *ClientSubscription[T]) Err() <-chan error {
	return c.subscription.Err()
}

// Done is closed once forwarding has stopped.
func (c *ClientSubscription[T]) Done() <-chan struct{} {
	return c.subscription.Done()
}

func (c *ClientSubscription[T]) IsClosed() bool {
	return c.subscription.IsClosed()
}
