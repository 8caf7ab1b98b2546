package hardware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tranvictor/walletkit/chains"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/patch"
	"github.com/tranvictor/walletkit/rpcprovider"
	"github.com/tranvictor/walletkit/scanner"
	"github.com/tranvictor/walletkit/wallet"
)

var ErrNoChains = errors.New("hardware wallet needs at least one chain")

// DialFunc opens the raw provider of a chain node.
type DialFunc func(ctx context.Context, url string) (eip1193.Requester, error)

func dialRPC(ctx context.Context, url string) (eip1193.Requester, error) {
	return rpcprovider.Dial(ctx, url)
}

// Module exposes one selected hardware account as a wallet. Reads go to the
// node of the current chain; signing stays on the device and is not served
// here.
type Module struct {
	Kind    Kind
	Account scanner.Account
	Dial    DialFunc
}

func (m *Module) Label() string {
	if m.Kind == "" {
		return "Hardware Wallet"
	}
	return strings.ToUpper(string(m.Kind[:1])) + string(m.Kind[1:])
}

func (m *Module) Icon(context.Context) (string, error) {
	return "", nil
}

func (m *Module) Interface(ctx context.Context, helpers wallet.GetInterfaceHelpers) (*wallet.Interface, error) {
	if len(helpers.Chains) == 0 {
		return nil, ErrNoChains
	}
	dial := m.Dial
	if dial == nil {
		dial = dialRPC
	}
	r := &router{
		chains:    helpers.Chains,
		dial:      dial,
		providers: map[uint64]eip1193.Requester{},
		Emitter:   rpcprovider.NewEmitter(),
	}
	accounts := eip1193.ProviderAccounts{m.Account.Address}
	return &wallet.Interface{
		Provider: r,
		Emitter:  r,
		Patch: patch.Unsupported(
			eip1193.MethodAddChain,
			eip1193.MethodSignTransaction,
			eip1193.MethodSign,
			eip1193.MethodSignTypedData,
		).Merge(patch.Patch{
			eip1193.MethodAccounts:        patch.Static(accounts),
			eip1193.MethodRequestAccounts: patch.Static(accounts),
			eip1193.MethodChainID: func(context.Context, patch.Args) (any, error) {
				return r.current().HexID(), nil
			},
			eip1193.MethodSwitchChain: func(_ context.Context, args patch.Args) (any, error) {
				params, err := eip1193.Decode[[]eip1193.SwitchChainParams](args.Params)
				if err != nil || len(params) != 1 {
					return nil, fmt.Errorf("wallet_switchEthereumChain expects [{chainId}]")
				}
				return nil, r.switchTo(params[0].ChainID)
			},
		}),
	}, nil
}

// router forwards to the node of the current chain, dialing lazily.
type router struct {
	*rpcprovider.Emitter

	chains []chains.Chain
	dial   DialFunc

	mu        sync.Mutex
	index     int
	providers map[uint64]eip1193.Requester
}

func (r *router) current() chains.Chain {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chains[r.index]
}

func (r *router) switchTo(id eip1193.ChainID) error {
	normalized, err := eip1193.NormalizeChainID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	found := -1
	for i, c := range r.chains {
		if c.HexID() == normalized {
			found = i
			break
		}
	}
	if found < 0 {
		r.mu.Unlock()
		return &eip1193.ProviderRpcError{
			Code:    eip1193.CodeChainDisconnected,
			Message: fmt.Sprintf("Unrecognized chain ID %s", normalized),
		}
	}
	changed := found != r.index
	r.index = found
	r.mu.Unlock()

	if changed {
		r.Emit(eip1193.EventChainChanged, normalized)
	}
	return nil
}

func (r *router) provider(ctx context.Context) (eip1193.Requester, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.chains[r.index]
	if p, found := r.providers[c.ID]; found {
		return p, nil
	}
	urls := c.RPCURLs()
	if len(urls) == 0 {
		return nil, &eip1193.ProviderRpcError{
			Code:    eip1193.CodeChainDisconnected,
			Message: fmt.Sprintf("no node configured for %s", c.Name),
		}
	}
	p, err := r.dial(ctx, urls[0])
	if err != nil {
		return nil, eip1193.NewDisconnectedError(err.Error())
	}
	r.providers[c.ID] = p
	return p, nil
}

func (r *router) Request(ctx context.Context, args eip1193.RequestArguments) (any, error) {
	p, err := r.provider(ctx)
	if err != nil {
		return nil, err
	}
	return p.Request(ctx, args)
}

func (r *router) Disconnect() error {
	r.mu.Lock()
	providers := r.providers
	r.providers = map[uint64]eip1193.Requester{}
	r.mu.Unlock()

	var errs []error
	for _, p := range providers {
		if d, ok := p.(eip1193.Disconnecter); ok {
			errs = append(errs, d.Disconnect())
		}
	}
	r.Emit(eip1193.EventDisconnect, eip1193.NewDisconnectedError(""))
	r.Stop()
	return errors.Join(errs...)
}
