// Package namespace discovers which wallets occupy the host injection slots.
package namespace

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tranvictor/walletkit/device"
	"github.com/tranvictor/walletkit/facade"
	"github.com/tranvictor/walletkit/host"
	"github.com/tranvictor/walletkit/identity"
	"github.com/tranvictor/walletkit/wallet"
)

var ErrProviderUnavailable = errors.New("provider unavailable")

// Discovery is one usable wallet found in a slot.
type Discovery struct {
	Slot   string
	Label  string
	Object *host.Object
	Module wallet.InjectedModule
}

type Resolver struct {
	modules []wallet.InjectedModule
	device  device.Device
}

// NewResolver keeps modules in the given order; discovery results follow it.
func NewResolver(d device.Device, modules ...wallet.InjectedModule) *Resolver {
	return &Resolver{
		modules: append([]wallet.InjectedModule(nil), modules...),
		device:  d,
	}
}

func (r *Resolver) Device() device.Device { return r.device }

func (r *Resolver) Modules() []wallet.InjectedModule {
	return append([]wallet.InjectedModule(nil), r.modules...)
}

// Slots lists the distinct slots modules live in, in registration order.
func (r *Resolver) Slots() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range r.modules {
		if ns := m.Namespace(); !seen[ns] {
			seen[ns] = true
			out = append(out, ns)
		}
	}
	return out
}

// Discover reads env once and reports every module whose identity check
// passes against an object in its slot. A slot holding several stacked
// providers can yield several results. Results are ordered by module
// registration and unique per (slot, label). An absent slot or an object
// nothing can talk to yields no result, never an error.
func (r *Resolver) Discover(ctx context.Context, env host.Environment) []Discovery {
	snap := host.Snapshot(env, r.Slots()...)
	seen := map[[2]string]bool{}
	var out []Discovery

	for _, m := range r.modules {
		if !r.eligible(m) {
			continue
		}
		slot := m.Namespace()
		obj := snap.Lookup(slot)
		if obj == nil {
			log.Trace("Slot absent", "slot", slot, "wallet", m.Label())
			continue
		}
		key := [2]string{slot, m.Label()}
		if seen[key] {
			continue
		}
		for _, candidate := range obj.Candidates() {
			if !m.CheckIdentity(identity.Observe(candidate), r.device) {
				continue
			}
			if !r.usable(ctx, m, candidate) {
				log.Debug("Skipped unusable provider", "slot", slot, "wallet", m.Label())
				continue
			}
			seen[key] = true
			out = append(out, Discovery{
				Slot:   slot,
				Label:  m.Label(),
				Object: candidate,
				Module: m,
			})
			break
		}
	}
	return out
}

// eligible treats an empty platform list as every platform.
func (r *Resolver) eligible(m wallet.InjectedModule) bool {
	platforms := m.Platforms()
	return len(platforms) == 0 || r.device.MatchesAny(platforms)
}

func (r *Resolver) usable(ctx context.Context, m wallet.InjectedModule, obj *host.Object) bool {
	if obj.Callable() {
		return true
	}
	iface, err := m.Interface(ctx, wallet.GetInterfaceHelpers{Device: r.device, Object: obj})
	return err == nil && iface != nil && iface.Provider != nil
}

// Connect builds the facade for a discovery. Helpers are completed with the
// resolver's device and the discovered object.
func (r *Resolver) Connect(ctx context.Context, d Discovery, helpers wallet.GetInterfaceHelpers) (*facade.Facade, error) {
	if d.Module == nil {
		return nil, fmt.Errorf("%s in %s: %w", d.Label, d.Slot, ErrProviderUnavailable)
	}
	helpers.Device = r.device
	helpers.Object = d.Object
	iface, err := d.Module.Interface(ctx, helpers)
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w: %w", d.Label, d.Slot, ErrProviderUnavailable, err)
	}
	f, err := facade.New(iface)
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w: %w", d.Label, d.Slot, ErrProviderUnavailable, err)
	}
	log.Debug("Connected wallet", "wallet", d.Label, "slot", d.Slot)
	return f, nil
}

// Find returns the discovery for label, if any.
func Find(discoveries []Discovery, label string) (Discovery, bool) {
	for _, d := range discoveries {
		if d.Label == label {
			return d, true
		}
	}
	return Discovery{}, false
}
