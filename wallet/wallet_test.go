package wallet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/walletkit/device"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/host"
	"github.com/tranvictor/walletkit/identity"
	"github.com/tranvictor/walletkit/wallet"
)

func TestCheckIdentityClaimsOnlyTheResolvedLabel(t *testing.T) {
	obj := &host.Object{Properties: map[string]any{"isMetaMask": true, "isToshi": true}}
	s := identity.Observe(obj)

	metamask := &wallet.Injected{Name: identity.LabelMetaMask, Slot: wallet.NamespaceEthereum}
	coinbase := &wallet.Injected{Name: identity.LabelCoinbase, Slot: wallet.NamespaceEthereum}
	assert.False(t, metamask.CheckIdentity(s, device.DesktopChrome))
	assert.True(t, coinbase.CheckIdentity(s, device.DesktopChrome))

	custom := &wallet.Injected{Name: "Mine", Identity: func(identity.Snapshot, device.Device) bool { return true }}
	assert.True(t, custom.CheckIdentity(s, device.DesktopChrome))
	assert.Equal(t, []device.Platform{device.All}, custom.Platforms())
}

func TestInterfaceNeedsCallableObject(t *testing.T) {
	w := &wallet.Injected{Name: identity.LabelMetaMask}
	_, err := w.Interface(context.Background(), wallet.GetInterfaceHelpers{Object: &host.Object{}})
	assert.ErrorIs(t, err, wallet.ErrNotCallable)

	raw := eip1193.RequesterFunc(func(context.Context, eip1193.RequestArguments) (any, error) { return "0x1", nil })
	iface, err := w.Interface(context.Background(), wallet.GetInterfaceHelpers{Object: &host.Object{Provider: raw}})
	require.NoError(t, err)
	res, err := iface.Provider.Request(context.Background(), eip1193.RequestArguments{Method: eip1193.MethodChainID})
	require.NoError(t, err)
	assert.Equal(t, "0x1", res)
}

func TestInjectedOptionsApply(t *testing.T) {
	a := &wallet.Injected{Name: "A"}
	b := &wallet.Injected{Name: "B"}
	c := &wallet.Injected{Name: "C"}
	mine := &wallet.Injected{Name: "Mine"}
	opts := wallet.InjectedOptions{
		Custom: []wallet.InjectedModule{mine},
		Filter: map[string]wallet.Exclusion{
			"A": {Disabled: true},
			"B": {Platforms: []device.Platform{"ios"}},
			"C": {Platforms: []device.Platform{"chrome"}},
		},
	}
	labels := func(ms []wallet.InjectedModule) []string {
		out := []string{}
		for _, m := range ms {
			out = append(out, m.Label())
		}
		return out
	}
	builtin := []wallet.InjectedModule{a, b, c}
	assert.Equal(t, []string{"B", "Mine"}, labels(opts.Apply(builtin, device.DesktopChrome)))

	iphone := device.Device{OS: device.OS{Name: device.IOS}, Type: device.Mobile, Browser: device.Browser{Name: device.Safari}}
	assert.Equal(t, []string{"C", "Mine"}, labels(opts.Apply(builtin, iphone)))
	assert.Len(t, builtin, 3)
}
