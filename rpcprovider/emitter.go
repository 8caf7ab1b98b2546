package rpcprovider

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/event"

	"github.com/tranvictor/walletkit/eip1193"
)

// Emitter is a native event source with one feed per EIP-1193 event.
// Handlers run on their own goroutine per subscription.
type Emitter struct {
	feeds  map[eip1193.Event]*event.FeedOf[any]
	scope  event.SubscriptionScope
	closed atomic.Bool
}

func NewEmitter() *Emitter {
	e := &Emitter{feeds: map[eip1193.Event]*event.FeedOf[any]{}}
	for _, ev := range eip1193.Events {
		e.feeds[ev] = new(event.FeedOf[any])
	}
	return e
}

// Subscribe delivers every payload emitted for name to handler until
// unsubscribed. Unknown event names never fire, and neither does anything
// subscribed after Stop.
func (e *Emitter) Subscribe(name string, handler func(payload any)) func() {
	feed, found := e.feeds[eip1193.Event(name)]
	if !found || e.closed.Load() {
		return func() {}
	}
	ch := make(chan any, 16)
	inner := feed.Subscribe(ch)
	sub := e.scope.Track(inner)
	if sub == nil {
		// scope closed after the check above
		inner.Unsubscribe()
		return func() {}
	}
	go func() {
		for {
			select {
			case payload := <-ch:
				handler(payload)
			case <-sub.Err():
				if e.closed.Load() {
					// deliver what was sent before closing, eg the final
					// disconnect
					for {
						select {
						case payload := <-ch:
							handler(payload)
						default:
							return
						}
					}
				}
				return
			}
		}
	}()
	return sub.Unsubscribe
}

// Emit blocks until every current subscriber has the payload queued.
func (e *Emitter) Emit(ev eip1193.Event, payload any) {
	if feed, found := e.feeds[ev]; found {
		feed.Send(payload)
	}
}

// Stop ends every subscription.
func (e *Emitter) Stop() {
	e.closed.Store(true)
	e.scope.Close()
}
