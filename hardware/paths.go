package hardware

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"

	"github.com/tranvictor/walletkit/scanner"
)

// accountMarker in a base path marks the component that iterates, as Ledger
// Live does with the account index.
const accountMarker = "x'"

var (
	LedgerLive   = scanner.BasePath{Label: "Ledger Live", Value: "m/44'/60'/x'/0/0"}
	LedgerLegacy = scanner.BasePath{Label: "Ledger Legacy", Value: "m/44'/60'/0'"}
	BIP44        = scanner.BasePath{Label: "BIP44 Standard", Value: "m/44'/60'/0'/0"}
)

// BasePaths are the paths offered for kind, most common first.
func BasePaths(kind Kind) []scanner.BasePath {
	if kind == Ledger {
		return []scanner.BasePath{LedgerLive, LedgerLegacy, BIP44}
	}
	return []scanner.BasePath{BIP44}
}

// Iterator returns successive derivation paths below base. A base carrying
// the account marker iterates that component; any other base iterates a
// child index appended to it.
func Iterator(base string) (func() accounts.DerivationPath, error) {
	if strings.Count(base, accountMarker) > 1 {
		return nil, fmt.Errorf("base path %s has more than one iterating component", base)
	}
	if strings.Contains(base, accountMarker) {
		p, err := accounts.ParseDerivationPath(strings.Replace(base, accountMarker, "0'", 1))
		if err != nil {
			return nil, err
		}
		if len(p) < 3 {
			return nil, fmt.Errorf("base path %s is too short", base)
		}
		return copying(accounts.LedgerLiveIterator(p)), nil
	}
	p, err := accounts.ParseDerivationPath(base)
	if err != nil {
		return nil, err
	}
	return copying(accounts.DefaultIterator(append(p, 0))), nil
}

// the go-ethereum iterators hand back the same slice on every call
func copying(next func() accounts.DerivationPath) func() accounts.DerivationPath {
	return func() accounts.DerivationPath {
		p := next()
		return append(accounts.DerivationPath(nil), p...)
	}
}
