package namespace_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/walletkit/device"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/host"
	"github.com/tranvictor/walletkit/identity"
	"github.com/tranvictor/walletkit/injected"
	"github.com/tranvictor/walletkit/namespace"
	"github.com/tranvictor/walletkit/wallet"
)

func provider(answer string) eip1193.Requester {
	return eip1193.RequesterFunc(func(_ context.Context, args eip1193.RequestArguments) (any, error) {
		if args.Method == eip1193.MethodChainID {
			return "56", nil
		}
		return answer, nil
	})
}

func flagged(flags ...string) *host.Object {
	props := map[string]any{}
	for _, f := range flags {
		props[f] = true
	}
	return &host.Object{Properties: props, Provider: provider(flags[0])}
}

func labels(ds []namespace.Discovery) []string {
	out := []string{}
	for _, d := range ds {
		out = append(out, d.Slot+"/"+d.Label)
	}
	return out
}

func builtinResolver(d device.Device) *namespace.Resolver {
	return namespace.NewResolver(d, injected.Builtin()...)
}

func TestTrustAndMetaMaskFlagsResolveToTrust(t *testing.T) {
	g := host.NewGlobals()
	g.Set(wallet.NamespaceEthereum, flagged(identity.FlagMetaMask, identity.FlagTrust))

	ds := builtinResolver(device.DesktopChrome).Discover(context.Background(), g)
	assert.Equal(t, []string{"ethereum/Trust Wallet"}, labels(ds))
}

func TestStackedProvidersAreAllReported(t *testing.T) {
	composite := flagged(identity.FlagMetaMask)
	composite.Providers = []*host.Object{
		flagged(identity.FlagMetaMask),
		flagged(identity.FlagCoinbase),
		nil,
	}
	g := host.NewGlobals()
	g.Set(wallet.NamespaceEthereum, composite)
	g.Set(wallet.NamespaceBinance, &host.Object{Methods: []string{"bbcSignTx"}, Provider: provider("bnb")})

	ds := builtinResolver(device.DesktopChrome).Discover(context.Background(), g)
	assert.Equal(t, []string{
		"BinanceChain/Binance Smart Wallet",
		"ethereum/Coinbase Wallet",
		"ethereum/MetaMask",
	}, labels(ds))
	coinbase, _ := ds[1].Object.Property(identity.FlagCoinbase)
	assert.Equal(t, true, coinbase)
}

func TestDiscoveryIsIdempotent(t *testing.T) {
	g := host.NewGlobals()
	g.Set(wallet.NamespaceEthereum, flagged(identity.FlagMetaMask))
	g.Set("xfi", &host.Object{Children: map[string]*host.Object{"ethereum": flagged(identity.FlagXDEFI)}})

	r := builtinResolver(device.DesktopChrome)
	first := r.Discover(context.Background(), g)
	second := r.Discover(context.Background(), g)
	assert.Equal(t, labels(first), labels(second))
	assert.Equal(t, []string{"xfi.ethereum/XDEFI Wallet", "ethereum/MetaMask"}, labels(first))
}

func TestSnapshotIsolatesLaterHostMutations(t *testing.T) {
	obj := flagged(identity.FlagMetaMask)
	g := host.NewGlobals()
	g.Set(wallet.NamespaceEthereum, obj)

	ds := builtinResolver(device.DesktopChrome).Discover(context.Background(), g)
	obj.Properties[identity.FlagTrust] = true
	require.Len(t, ds, 1)
	_, trust := ds[0].Object.Property(identity.FlagTrust)
	assert.False(t, trust)
}

func TestAbsentSlotsYieldNothing(t *testing.T) {
	ds := builtinResolver(device.DesktopChrome).Discover(context.Background(), host.NewGlobals())
	assert.Empty(t, ds)
}

func TestObjectWithoutRequestIsExcluded(t *testing.T) {
	g := host.NewGlobals()
	g.Set(wallet.NamespaceEthereum, &host.Object{Properties: map[string]any{"isMetaMask": true}})

	ds := builtinResolver(device.DesktopChrome).Discover(context.Background(), g)
	assert.Empty(t, ds)
}

type bridgeModule struct {
	wallet.Injected
	provider eip1193.Requester
}

func (b *bridgeModule) Interface(context.Context, wallet.GetInterfaceHelpers) (*wallet.Interface, error) {
	return &wallet.Interface{Provider: b.provider}, nil
}

func TestInterfaceFactoryRescuesObjectWithoutRequest(t *testing.T) {
	m := &bridgeModule{
		Injected: wallet.Injected{
			Name: "Bridge",
			Slot: "bridge",
			Identity: func(s identity.Snapshot, _ device.Device) bool {
				return s.Flag("isBridge")
			},
		},
		provider: provider("bridged"),
	}
	g := host.NewGlobals()
	g.Set("bridge", &host.Object{Properties: map[string]any{"isBridge": true}})

	r := namespace.NewResolver(device.DesktopChrome, m)
	ds := r.Discover(context.Background(), g)
	require.Len(t, ds, 1)

	f, err := r.Connect(context.Background(), ds[0], wallet.GetInterfaceHelpers{})
	require.NoError(t, err)
	res, err := f.Request(context.Background(), eip1193.RequestArguments{Method: eip1193.MethodAccounts})
	require.NoError(t, err)
	assert.Equal(t, "bridged", res)
}

func TestPlatformFilter(t *testing.T) {
	g := host.NewGlobals()
	g.Set(wallet.NamespaceBinance, &host.Object{Methods: []string{"bbcSignTx"}, Provider: provider("bnb")})

	phone := device.Device{OS: device.OS{Name: device.Android}, Type: device.Mobile, Browser: device.Browser{Name: device.Chrome}}
	assert.Empty(t, builtinResolver(phone).Discover(context.Background(), g))
	assert.Len(t, builtinResolver(device.DesktopChrome).Discover(context.Background(), g), 1)
}

func TestExclusionsApplyBeforeDiscovery(t *testing.T) {
	g := host.NewGlobals()
	g.Set(wallet.NamespaceEthereum, flagged(identity.FlagMetaMask))

	opts := wallet.InjectedOptions{Filter: map[string]wallet.Exclusion{
		identity.LabelMetaMask: {Disabled: true},
	}}
	modules := opts.Apply(injected.Builtin(), device.DesktopChrome)
	ds := namespace.NewResolver(device.DesktopChrome, modules...).Discover(context.Background(), g)

	// MetaMask is gone and the object no longer resolves to the generic
	// fallback either, since its identity is MetaMask's
	assert.Empty(t, ds)
}

func TestConnectAppliesVendorPatch(t *testing.T) {
	g := host.NewGlobals()
	g.Set(wallet.NamespaceBinance, &host.Object{Methods: []string{"bbcSignTx"}, Provider: provider("bnb")})

	r := builtinResolver(device.DesktopChrome)
	ds := r.Discover(context.Background(), g)
	d, ok := namespace.Find(ds, identity.LabelBinance)
	require.True(t, ok)

	f, err := r.Connect(context.Background(), d, wallet.GetInterfaceHelpers{})
	require.NoError(t, err)

	id, err := eip1193.ChainIDOf(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "0x38", id)

	_, err = f.Request(context.Background(), eip1193.RequestArguments{
		Method: eip1193.MethodSwitchChain,
		Params: eip1193.SwitchChainParamsList("0x1"),
	})
	assert.ErrorIs(t, err, eip1193.ErrUnsupportedMethod)
}

func TestConnectWithoutModule(t *testing.T) {
	r := builtinResolver(device.DesktopChrome)
	_, err := r.Connect(context.Background(), namespace.Discovery{Label: "x"}, wallet.GetInterfaceHelpers{})
	assert.ErrorIs(t, err, namespace.ErrProviderUnavailable)
}
