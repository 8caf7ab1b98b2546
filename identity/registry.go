// Package identity resolves which wallet a provider object belongs to from
// the identity markers wallets set on it.
package identity

import (
	"fmt"
	"sync"

	"github.com/tranvictor/walletkit/device"
)

// Flag names wallets set on their injected provider.
const (
	FlagAlphaWallet = "isAlphaWallet"
	FlagAToken      = "isAToken"
	FlagBinance     = "bbcSignTx"
	FlagBitpie      = "isBitpie"
	FlagBlankWallet = "isBlank"
	FlagBrave       = "isBraveWallet"
	FlagCoinbase    = "isToshi"
	FlagDetected    = "request"
	FlagDcent       = "isDcentWallet"
	FlagFrame       = "isFrame"
	FlagHuobiWallet = "isHbWallet"
	FlagHyperPay    = "isHyperPay"
	FlagImToken     = "isImToken"
	FlagLiquality   = "isLiquality"
	FlagMeetOne     = "wallet"
	FlagMetaMask    = "isMetaMask"
	FlagMyKey       = "isMYKEY"
	FlagOpera       = "browser:Opera"
	FlagOwnBit      = "isOwnbit"
	FlagStatus      = "isStatus"
	FlagTrust       = "isTrust"
	FlagTokenPocket = "isTokenPocket"
	FlagTP          = "isTp"
	FlagWalletIo    = "isWalletIO"
	FlagXDEFI       = "isXDEFI"
)

// Wallet labels.
const (
	LabelAlphaWallet = "AlphaWallet"
	LabelAToken      = "AToken"
	LabelBinance     = "Binance Smart Wallet"
	LabelBitpie      = "Bitpie"
	LabelBlankWallet = "BlankWallet"
	LabelBrave       = "Brave Wallet"
	LabelCoinbase    = "Coinbase Wallet"
	LabelDcent       = "D'CENT"
	LabelDetected    = "Detected Wallet"
	LabelFrame       = "Frame"
	LabelHuobiWallet = "Huobi Wallet"
	LabelHyperPay    = "HyperPay"
	LabelImToken     = "imToken"
	LabelLiquality   = "Liquality"
	LabelMeetOne     = "MeetOne"
	LabelMetaMask    = "MetaMask"
	LabelMyKey       = "MyKey"
	LabelOpera       = "Opera Wallet"
	LabelOwnBit      = "OwnBit"
	LabelStatus      = "Status Wallet"
	LabelTrust       = "Trust Wallet"
	LabelTokenPocket = "TokenPocket"
	LabelTP          = "TP Wallet"
	LabelWalletIo    = "Wallet.io"
	LabelXDEFI       = "XDEFI Wallet"
)

// Entry ties an identity marker to a wallet label.
type Entry struct {
	Flag  string    `yaml:"flag"`
	Label string    `yaml:"label"`
	Match Predicate `yaml:"match"`
}

// Identity is a resolved entry.
type Identity struct {
	Flag  string
	Label string
}

// Registry evaluates entries in order; the first match wins.
type Registry struct {
	entries []Entry
}

// NewRegistry validates entries and keeps their order. Flags must be unique.
func NewRegistry(entries ...Entry) (*Registry, error) {
	seen := map[string]bool{}
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		if e.Flag == "" || e.Label == "" {
			return nil, fmt.Errorf("entry %d: flag and label are required", i)
		}
		if seen[e.Flag] {
			return nil, fmt.Errorf("entry %d: duplicated flag %q", i, e.Flag)
		}
		seen[e.Flag] = true
		if e.Match.Kind == "" {
			e.Match = Flag(e.Flag)
		}
		if err := e.Match.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.Flag, err)
		}
		out = append(out, e)
	}
	return &Registry{entries: out}, nil
}

// Prepend returns a new registry with custom entries evaluated before the
// existing ones.
func (r *Registry) Prepend(custom ...Entry) (*Registry, error) {
	return NewRegistry(append(append([]Entry{}, custom...), r.entries...)...)
}

func (r *Registry) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Resolve returns the identity of the first entry matching s. ok is false
// when nothing matches, which callers treat as an unbranded provider.
func (r *Registry) Resolve(s Snapshot, d device.Device) (Identity, bool) {
	for _, e := range r.entries {
		if e.Match.Match(s, d) {
			return Identity{Flag: e.Flag, Label: e.Label}, true
		}
	}
	return Identity{}, false
}

// Matches lists every entry matching s in priority order. Useful to explain
// a resolution where several flags are set at once.
func (r *Registry) Matches(s Snapshot, d device.Device) []Identity {
	var out []Identity
	for _, e := range r.entries {
		if e.Match.Match(s, d) {
			out = append(out, Identity{Flag: e.Flag, Label: e.Label})
		}
	}
	return out
}

// DefaultEntries is the built-in priority list. Wallets that also set
// isMetaMask for compatibility come before MetaMask; the generic request
// check is last.
func DefaultEntries() []Entry {
	return []Entry{
		{Flag: FlagBinance, Label: LabelBinance, Match: Method(FlagBinance)},
		{Flag: FlagMeetOne, Label: LabelMeetOne, Match: StringEquals(FlagMeetOne, "MEETONE")},
		{Flag: FlagXDEFI, Label: LabelXDEFI},
		{Flag: FlagTrust, Label: LabelTrust},
		{Flag: FlagTokenPocket, Label: LabelTokenPocket},
		{Flag: FlagTP, Label: LabelTP},
		{Flag: FlagImToken, Label: LabelImToken},
		{Flag: FlagCoinbase, Label: LabelCoinbase},
		{Flag: FlagBrave, Label: LabelBrave},
		{Flag: FlagAlphaWallet, Label: LabelAlphaWallet},
		{Flag: FlagAToken, Label: LabelAToken},
		{Flag: FlagBitpie, Label: LabelBitpie},
		{Flag: FlagBlankWallet, Label: LabelBlankWallet},
		{Flag: FlagDcent, Label: LabelDcent},
		{Flag: FlagFrame, Label: LabelFrame},
		{Flag: FlagHuobiWallet, Label: LabelHuobiWallet},
		{Flag: FlagHyperPay, Label: LabelHyperPay},
		{Flag: FlagLiquality, Label: LabelLiquality},
		{Flag: FlagMyKey, Label: LabelMyKey},
		{Flag: FlagOwnBit, Label: LabelOwnBit},
		{Flag: FlagStatus, Label: LabelStatus},
		{Flag: FlagWalletIo, Label: LabelWalletIo},
		{Flag: FlagOpera, Label: LabelOpera, Match: All(Browser(device.Opera), Method(FlagDetected))},
		{Flag: FlagMetaMask, Label: LabelMetaMask},
		{Flag: FlagDetected, Label: LabelDetected, Match: Method(FlagDetected)},
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry over DefaultEntries. Registries are
// immutable so sharing it is safe.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(DefaultEntries()...)
		if err != nil {
			panic(fmt.Errorf("default identity registry: %w", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
