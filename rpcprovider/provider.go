// Package rpcprovider is a raw EIP-1193 provider backed by a JSON-RPC
// endpoint.
package rpcprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"

	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/host"
)

var ErrClosed = errors.New("provider is disconnected")

// Provider forwards every request verbatim to its node. It also serves as
// the native emitter for the events its watcher detects.
type Provider struct {
	ID  uuid.UUID
	URL string

	*Emitter

	client *rpc.Client
	logger log.Logger

	mu      sync.Mutex
	closed  bool
	stop    context.CancelFunc
	watched chan struct{}
}

// Dial connects to url. Nothing is emitted until Watch runs.
func Dial(ctx context.Context, url string) (*Provider, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to %s: %w", url, err)
	}
	p := New(client)
	p.URL = url
	return p, nil
}

// New wraps an existing client. The provider owns it from then on.
func New(client *rpc.Client) *Provider {
	id := uuid.New()
	return &Provider{
		ID:      id,
		Emitter: NewEmitter(),
		client:  client,
		logger:  log.New("provider", id),
	}
}

// Dialer adapts Dial for host snapshot files.
func Dialer() host.Dialer {
	return func(ctx context.Context, url string) (eip1193.Requester, eip1193.Emitter, error) {
		p, err := Dial(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	}
}

// Request sends args.Method with args.Params as the positional parameter
// list and returns the raw JSON result. Node errors keep their code,
// message and data.
func (p *Provider) Request(ctx context.Context, args eip1193.RequestArguments) (any, error) {
	if p.isClosed() {
		return nil, eip1193.NewDisconnectedError(ErrClosed.Error())
	}

	params, err := positional(args.Params)
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := p.client.CallContext(ctx, &result, string(args.Method), params...); err != nil {
		if perr, ok := eip1193.AsRpcError(err); ok {
			return nil, perr
		}
		return nil, err
	}
	p.logger.Trace("Forwarded request", "method", args.Method)
	return result, nil
}

// positional spreads params into the argument list CallContext expects.
func positional(params any) ([]any, error) {
	switch v := params.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case json.RawMessage:
		var out []json.RawMessage
		if err := json.Unmarshal(v, &out); err != nil {
			return nil, fmt.Errorf("params must be a JSON array: %w", err)
		}
		args := make([]any, len(out))
		for i := range out {
			args[i] = out[i]
		}
		return args, nil
	}
	rv := reflect.ValueOf(params)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		args := make([]any, rv.Len())
		for i := range args {
			args[i] = rv.Index(i).Interface()
		}
		return args, nil
	}
	// by-name params go through as a single object
	return []any{params}, nil
}

func (p *Provider) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Provider) emit(e eip1193.Event, payload any) {
	p.logger.Debug("Emitting provider event", "event", e)
	p.Emit(e, payload)
}

// Disconnect stops the watcher, closes the client and emits disconnect.
func (p *Provider) Disconnect() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	stop, watched := p.stop, p.watched
	p.mu.Unlock()

	if stop != nil {
		stop()
		<-watched
	}
	p.client.Close()
	p.emit(eip1193.EventDisconnect, eip1193.NewDisconnectedError(""))
	p.Emitter.Stop()
	return nil
}
