package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/tranvictor/walletkit/device"
	"github.com/tranvictor/walletkit/identity"
	"github.com/tranvictor/walletkit/patch"
)

// Injected namespaces wallets are known to use.
const (
	NamespaceEthereum = "ethereum"
	NamespaceBinance  = "BinanceChain"
	NamespaceWeb3     = "web3"
	NamespaceArbitrum = "arbitrum"
	NamespaceXFI      = "xfi.ethereum"
)

var ErrNotCallable = errors.New("injected object exposes no request")

// Injected is the stock InjectedModule: it resolves identity through a
// registry and returns the matched object's provider with a fixed patch.
type Injected struct {
	Name      string
	Slot      string
	OnDevices []device.Platform
	Patch     patch.Patch
	SVG       string

	// Registry defaults to identity.Default(). Identity, when set, replaces
	// the registry check entirely.
	Registry *identity.Registry
	Identity func(s identity.Snapshot, d device.Device) bool
}

func (w *Injected) Label() string     { return w.Name }
func (w *Injected) Namespace() string { return w.Slot }

func (w *Injected) Platforms() []device.Platform {
	if len(w.OnDevices) == 0 {
		return []device.Platform{device.All}
	}
	return w.OnDevices
}

func (w *Injected) Icon(context.Context) (string, error) {
	return w.SVG, nil
}

// CheckIdentity matches when the registry resolves s to this module's label,
// so an object carrying several vendor flags is only claimed by the highest
// priority one.
func (w *Injected) CheckIdentity(s identity.Snapshot, d device.Device) bool {
	if w.Identity != nil {
		return w.Identity(s, d)
	}
	reg := w.Registry
	if reg == nil {
		reg = identity.Default()
	}
	id, ok := reg.Resolve(s, d)
	return ok && id.Label == w.Name
}

func (w *Injected) Interface(_ context.Context, helpers GetInterfaceHelpers) (*Interface, error) {
	if !helpers.Object.Callable() {
		return nil, fmt.Errorf("%s: %w", w.Name, ErrNotCallable)
	}
	return &Interface{
		Provider: helpers.Object.Provider,
		Emitter:  helpers.Object.Emitter,
		Patch:    w.Patch,
	}, nil
}

// Exclusion removes a module entirely (Disabled) or only on the listed
// platforms.
type Exclusion struct {
	Disabled  bool              `yaml:"disabled"`
	Platforms []device.Platform `yaml:"platforms"`
}

type InjectedOptions struct {
	// Custom modules are appended after the built-in ones.
	Custom []InjectedModule
	// Filter is keyed by module label.
	Filter map[string]Exclusion
}

// Apply returns the built-in modules plus custom ones, minus everything the
// filter excludes on d. Order is preserved.
func (o InjectedOptions) Apply(builtin []InjectedModule, d device.Device) []InjectedModule {
	all := append(append([]InjectedModule{}, builtin...), o.Custom...)
	out := make([]InjectedModule, 0, len(all))
	for _, m := range all {
		ex, found := o.Filter[m.Label()]
		if found {
			if ex.Disabled {
				continue
			}
			if len(ex.Platforms) > 0 && d.MatchesAny(ex.Platforms) {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}
