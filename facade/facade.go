// Package facade is the uniform provider handed to callers: a patched
// request entry point plus an event surface with canonical payloads.
package facade

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/patch"
	"github.com/tranvictor/walletkit/wallet"
)

var ErrNoProvider = errors.New("wallet interface has no provider")

// ListenerID identifies a registered listener for RemoveListener.
type ListenerID uint64

type registered struct {
	id       ListenerID
	listener eip1193.Listener
}

// Facade wraps one raw provider and one patch. The only state it owns is the
// listener registry.
type Facade struct {
	raw     eip1193.Requester
	emitter eip1193.Emitter
	request eip1193.RequestFunc

	mu        sync.Mutex
	nextID    ListenerID
	listeners map[eip1193.Event][]registered
	native    map[eip1193.Event]func()
}

func New(iface *wallet.Interface) (*Facade, error) {
	if iface == nil || iface.Provider == nil {
		return nil, ErrNoProvider
	}
	emitter := iface.Emitter
	if emitter == nil {
		emitter, _ = iface.Provider.(eip1193.Emitter)
	}
	return &Facade{
		raw:       iface.Provider,
		emitter:   emitter,
		request:   patch.Wrap(iface.Provider.Request, iface.Patch),
		listeners: map[eip1193.Event][]registered{},
		native:    map[eip1193.Event]func(){},
	}, nil
}

// Request forwards to the patched request. Errors from the wallet or from a
// patch come back unchanged.
func (f *Facade) Request(ctx context.Context, args eip1193.RequestArguments) (any, error) {
	return f.request(ctx, args)
}

// On registers l for event. The listener type must match the event, eg an
// eip1193.ChainListener for chainChanged.
func (f *Facade) On(event eip1193.Event, l eip1193.Listener) (ListenerID, error) {
	if !event.Valid() {
		return 0, fmt.Errorf("unknown event %q", event)
	}
	if l == nil {
		return 0, fmt.Errorf("nil listener for %s", event)
	}
	if got := eip1193.ListenerEvent(l); got != event {
		return 0, fmt.Errorf("listener for %s registered on %s", got, event)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.listeners[event] = append(f.listeners[event], registered{id: id, listener: l})
	if _, subscribed := f.native[event]; !subscribed && f.emitter != nil {
		f.native[event] = f.emitter.Subscribe(string(event), func(payload any) {
			f.dispatch(event, payload)
		})
	}
	return id, nil
}

// RemoveListener drops the listener and reports whether it was registered.
// It is safe to call from inside a listener.
func (f *Facade) RemoveListener(event eip1193.Event, id ListenerID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.listeners[event]
	for i, r := range list {
		if r.id != id {
			continue
		}
		rest := make([]registered, 0, len(list)-1)
		rest = append(rest, list[:i]...)
		rest = append(rest, list[i+1:]...)
		f.listeners[event] = rest
		if len(rest) == 0 {
			if unsubscribe := f.native[event]; unsubscribe != nil {
				unsubscribe()
			}
			delete(f.native, event)
		}
		return true
	}
	return false
}

// ListenerCount reports how many listeners are registered for event.
func (f *Facade) ListenerCount(event eip1193.Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners[event])
}

// Disconnect forwards to the raw provider when it can disconnect and is a
// no-op otherwise.
func (f *Facade) Disconnect() error {
	d, ok := f.raw.(eip1193.Disconnecter)
	if !ok {
		return nil
	}
	return d.Disconnect()
}

func (f *Facade) dispatch(event eip1193.Event, payload any) {
	f.mu.Lock()
	snapshot := f.listeners[event]
	f.mu.Unlock()
	if len(snapshot) == 0 {
		return
	}

	normalized, err := Normalize(event, payload)
	if err != nil {
		log.Warn("Dropped provider event", "event", event, "err", err)
		return
	}
	for _, r := range snapshot {
		deliver(r.listener, normalized)
	}
}

func deliver(l eip1193.Listener, payload any) {
	switch fn := l.(type) {
	case eip1193.ConnectListener:
		fn(payload.(eip1193.ProviderInfo))
	case eip1193.DisconnectListener:
		fn(payload.(*eip1193.ProviderRpcError))
	case eip1193.MessageListener:
		fn(payload.(eip1193.ProviderMessage))
	case eip1193.ChainListener:
		fn(payload.(eip1193.ChainID))
	case eip1193.AccountsListener:
		fn(payload.(eip1193.ProviderAccounts))
	}
}
