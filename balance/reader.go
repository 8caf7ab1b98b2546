package balance

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/tranvictor/walletkit/chains"
)

var ErrNoNodes = errors.New("no nodes configured")

// Reader fans every read out to all of its nodes and returns the first
// success. When every node fails the errors of all nodes are joined.
type Reader struct {
	nodes []*node
}

func NewReader(nodes map[string]string) *Reader {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	r := &Reader{}
	for _, name := range names {
		r.nodes = append(r.nodes, newNode(name, nodes[name]))
	}
	return r
}

// NewReaderFromClients uses already connected clients.
func NewReaderFromClients(clients map[string]*rpc.Client) *Reader {
	names := make([]string, 0, len(clients))
	for name := range clients {
		names = append(names, name)
	}
	sort.Strings(names)
	r := &Reader{}
	for _, name := range names {
		r.nodes = append(r.nodes, newNodeFromClient(name, clients[name]))
	}
	return r
}

func ForChain(c chains.Chain) *Reader {
	return NewReader(c.Nodes())
}

func (r *Reader) Close() {
	for _, n := range r.nodes {
		n.close()
	}
}

type result[T any] struct {
	Value T
	Error error
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

func firstOf[T any](ctx context.Context, r *Reader, read func(ctx context.Context, n *node) (T, error)) (T, error) {
	var zero T
	if len(r.nodes) == 0 {
		return zero, ErrNoNodes
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resCh := make(chan result[T], len(r.nodes))
	for i := range r.nodes {
		n := r.nodes[i]
		go func() {
			v, err := read(ctx, n)
			resCh <- result[T]{
				Value: v,
				Error: wrapError(err, n.name),
			}
		}()
	}
	errs := []error{}
	for i := 0; i < len(r.nodes); i++ {
		res := <-resCh
		if res.Error == nil {
			return res.Value, nil
		}
		errs = append(errs, res.Error)
	}
	return zero, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

// Native returns the wei balance of address.
func (r *Reader) Native(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address %q", address)
	}
	addr := common.HexToAddress(address)
	return firstOf(ctx, r, func(ctx context.Context, n *node) (*big.Int, error) {
		return n.nativeBalance(ctx, addr)
	})
}

// Token returns the ERC-20 balance of address in token units.
func (r *Reader) Token(ctx context.Context, token, address string) (*big.Int, error) {
	if !common.IsHexAddress(token) {
		return nil, fmt.Errorf("invalid token address %q", token)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address %q", address)
	}
	t, a := common.HexToAddress(token), common.HexToAddress(address)
	return firstOf(ctx, r, func(ctx context.Context, n *node) (*big.Int, error) {
		return n.tokenBalance(ctx, t, a)
	})
}

// Of reads the native balance when token is empty, the token balance
// otherwise.
func (r *Reader) Of(ctx context.Context, token, address string) (*big.Int, error) {
	if token == "" {
		return r.Native(ctx, address)
	}
	return r.Token(ctx, token, address)
}
