// Package scanner enumerates accounts across derivation paths, chains and
// assets for wallets that derive more than one address.
package scanner

import (
	"context"
	"fmt"
	"math/big"

	"github.com/tranvictor/walletkit/chains"
	"github.com/tranvictor/walletkit/eip1193"
)

// Asset is a token to read balances of. Address is empty for the chain's
// native token.
type Asset struct {
	Label   string `yaml:"label" json:"label"`
	Address string `yaml:"address" json:"address,omitempty"`
}

func (a Asset) Native() bool { return a.Address == "" }

type Balance struct {
	Asset Asset
	Value *big.Int
}

// Account is immutable once a fetcher returns it.
type Account struct {
	Address        string
	DerivationPath string
	Balance        Balance
}

// Funded reports a nonzero balance.
func (a Account) Funded() bool {
	return a.Balance.Value != nil && a.Balance.Value.Sign() != 0
}

// AccountsList holds every scanned account and, in the same relative order,
// the funded ones.
type AccountsList struct {
	All      []Account
	Filtered []Account
}

func (l *AccountsList) add(accounts ...Account) {
	for _, a := range accounts {
		l.All = append(l.All, a)
		if a.Funded() {
			l.Filtered = append(l.Filtered, a)
		}
	}
}

type BasePath struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// ScanOptions is what a fetcher receives for one branch.
type ScanOptions struct {
	DerivationPath string
	ChainID        eip1193.ChainID
	Asset          Asset
}

// ScanAccountsFunc fetches the accounts of one branch. Pagination and gap
// limits are its own business.
type ScanAccountsFunc func(ctx context.Context, opts ScanOptions) ([]Account, error)

type SelectAccountOptions struct {
	BasePaths    []BasePath
	Assets       []Asset
	Chains       []chains.Chain
	ScanAccounts ScanAccountsFunc
	// WalletIcon is carried for choosers; scanning ignores it.
	WalletIcon string
}

// Branch is one (base path, chain, asset) combination. Index is its position
// in iteration order.
type Branch struct {
	Index    int
	BasePath BasePath
	ChainID  eip1193.ChainID
	Asset    Asset
}

func (b Branch) String() string {
	return fmt.Sprintf("%s/%s/%s", b.BasePath.Value, b.ChainID, b.Asset.Label)
}

func (b Branch) options() ScanOptions {
	return ScanOptions{DerivationPath: b.BasePath.Value, ChainID: b.ChainID, Asset: b.Asset}
}

// Branches expands opts into every branch, base paths outermost and assets
// innermost.
func Branches(opts SelectAccountOptions) []Branch {
	var out []Branch
	for _, bp := range opts.BasePaths {
		for _, c := range opts.Chains {
			for _, a := range opts.Assets {
				out = append(out, Branch{
					Index:    len(out),
					BasePath: bp,
					ChainID:  c.HexID(),
					Asset:    a,
				})
			}
		}
	}
	return out
}
