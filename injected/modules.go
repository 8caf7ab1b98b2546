// Package injected holds the built-in modules for wallets that inject a
// provider into the host namespace.
package injected

import (
	"github.com/tranvictor/walletkit/device"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/identity"
	"github.com/tranvictor/walletkit/patch"
	"github.com/tranvictor/walletkit/wallet"
)

var (
	desktop = []device.Platform{device.Platform(device.Desktop)}
	mobile  = []device.Platform{device.Platform(device.Mobile), device.Platform(device.Tablet)}
)

// noChainSwitching marks chain add/switch unsupported for wallets that
// either lack them or implement them incorrectly.
var noChainSwitching = patch.Unsupported(eip1193.MethodSwitchChain, eip1193.MethodAddChain)

func module(label, slot string, platforms []device.Platform, p patch.Patch) *wallet.Injected {
	return &wallet.Injected{
		Name:      label,
		Slot:      slot,
		OnDevices: platforms,
		Patch:     p,
	}
}

// Binance Chain Wallet answers eth_chainId in decimal and cannot switch
// chains through the standard methods.
func Binance() *wallet.Injected {
	return module(identity.LabelBinance, wallet.NamespaceBinance, desktop,
		noChainSwitching.Merge(patch.Patch{eip1193.MethodChainID: patch.HexChainID()}))
}

func MeetOne() *wallet.Injected {
	return module(identity.LabelMeetOne, wallet.NamespaceWeb3, nil,
		patch.Patch{eip1193.MethodChainID: patch.HexChainID()})
}

// MetaMask only signs v4 typed data through eth_signTypedData_v4.
func MetaMask() *wallet.Injected {
	return module(identity.LabelMetaMask, wallet.NamespaceEthereum, nil,
		patch.Patch{eip1193.MethodSignTypedData: patch.TypedDataV4()})
}

func Trust() *wallet.Injected {
	return module(identity.LabelTrust, wallet.NamespaceEthereum, nil, noChainSwitching)
}

func XDEFI() *wallet.Injected {
	return module(identity.LabelXDEFI, wallet.NamespaceXFI, nil, nil)
}

func Opera() *wallet.Injected {
	return module(identity.LabelOpera, wallet.NamespaceEthereum,
		[]device.Platform{device.Platform(device.Opera)},
		patch.Patch{eip1193.MethodChainID: patch.HexChainID()})
}

func Brave() *wallet.Injected {
	return module(identity.LabelBrave, wallet.NamespaceEthereum, desktop,
		patch.Patch{eip1193.MethodSignTypedData: patch.TypedDataV4()})
}

// Detected is the generic fallback for any callable provider in the
// ethereum slot that no vendor module claimed.
func Detected() *wallet.Injected {
	return module(identity.LabelDetected, wallet.NamespaceEthereum, nil, nil)
}

// plain are wallets served as is from the ethereum slot.
var plain = []struct {
	label     string
	platforms []device.Platform
}{
	{identity.LabelTokenPocket, nil},
	{identity.LabelTP, mobile},
	{identity.LabelImToken, mobile},
	{identity.LabelCoinbase, nil},
	{identity.LabelAlphaWallet, mobile},
	{identity.LabelAToken, mobile},
	{identity.LabelBitpie, mobile},
	{identity.LabelBlankWallet, desktop},
	{identity.LabelDcent, nil},
	{identity.LabelFrame, desktop},
	{identity.LabelHuobiWallet, mobile},
	{identity.LabelHyperPay, mobile},
	{identity.LabelLiquality, desktop},
	{identity.LabelMyKey, mobile},
	{identity.LabelOwnBit, mobile},
	{identity.LabelStatus, mobile},
	{identity.LabelWalletIo, mobile},
}

// Builtin returns fresh instances of every built-in module. Vendor modules
// come first and Detected Wallet is always last.
func Builtin() []wallet.InjectedModule {
	out := []wallet.InjectedModule{
		Binance(),
		MeetOne(),
		XDEFI(),
		Trust(),
	}
	for _, w := range plain {
		out = append(out, module(w.label, wallet.NamespaceEthereum, w.platforms, nil))
	}
	out = append(out,
		Brave(),
		Opera(),
		MetaMask(),
		Detected(),
	)
	return out
}

// WithRegistry points every stock module at reg, used when custom identity
// rules are loaded.
func WithRegistry(modules []wallet.InjectedModule, reg *identity.Registry) []wallet.InjectedModule {
	for _, m := range modules {
		if w, ok := m.(*wallet.Injected); ok {
			w.Registry = reg
		}
	}
	return modules
}
