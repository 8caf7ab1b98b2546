package hardware

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tranvictor/walletkit/balance"
	"github.com/tranvictor/walletkit/chains"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/scanner"
)

const (
	DefaultPageSize    = 5
	DefaultGapLimit    = 5
	DefaultMaxAccounts = 50
)

// BalanceReader reads the balance of address in token, the native token
// when token is empty.
type BalanceReader interface {
	Of(ctx context.Context, token, address string) (*big.Int, error)
}

// ReaderFor returns the balance reader of a chain.
type ReaderFor func(chainID eip1193.ChainID) (BalanceReader, error)

// ChainReaders builds one balance.Reader per chain of reg on first use.
func ChainReaders(reg *chains.Registry) ReaderFor {
	var (
		mu      sync.Mutex
		readers = map[eip1193.ChainID]BalanceReader{}
	)
	return func(id eip1193.ChainID) (BalanceReader, error) {
		mu.Lock()
		defer mu.Unlock()
		if r, found := readers[id]; found {
			return r, nil
		}
		c, err := reg.ByChainID(id)
		if err != nil {
			return nil, err
		}
		r := balance.ForChain(c)
		readers[id] = r
		return r, nil
	}
}

// Fetcher derives addresses page by page and reads their balances until
// GapLimit consecutive empty accounts were seen or MaxAccounts were derived.
type Fetcher struct {
	Deriver     Deriver
	Readers     ReaderFor
	PageSize    int
	GapLimit    int
	MaxAccounts int
}

func (f *Fetcher) limits() (page, gap, limit int) {
	page, gap, limit = f.PageSize, f.GapLimit, f.MaxAccounts
	if page <= 0 {
		page = DefaultPageSize
	}
	if gap <= 0 {
		gap = DefaultGapLimit
	}
	if limit <= 0 {
		limit = DefaultMaxAccounts
	}
	return page, gap, limit
}

// ScanAccounts is a scanner.ScanAccountsFunc.
func (f *Fetcher) ScanAccounts(ctx context.Context, opts scanner.ScanOptions) ([]scanner.Account, error) {
	next, err := Iterator(opts.DerivationPath)
	if err != nil {
		return nil, err
	}
	reader, err := f.Readers(opts.ChainID)
	if err != nil {
		return nil, fmt.Errorf("balances on %s: %w", opts.ChainID, err)
	}
	page, gap, limit := f.limits()

	var (
		out   []scanner.Account
		empty int
	)
	for len(out) < limit && empty < gap {
		for i := 0; i < page && len(out) < limit; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			path := next()
			addr, err := f.Deriver.Derive(path)
			if err != nil {
				return nil, fmt.Errorf("can't derive %s: %w", path, err)
			}
			value, err := reader.Of(ctx, opts.Asset.Address, addr.Hex())
			if err != nil {
				return nil, fmt.Errorf("balance of %s: %w", addr.Hex(), err)
			}
			if value == nil {
				value = new(big.Int)
			}
			out = append(out, scanner.Account{
				Address:        addr.Hex(),
				DerivationPath: path.String(),
				Balance:        scanner.Balance{Asset: opts.Asset, Value: value},
			})
			if value.Sign() == 0 {
				empty++
			} else {
				empty = 0
			}
		}
		log.Debug("Scanned page", "base", opts.DerivationPath, "chain", opts.ChainID, "accounts", len(out), "empty", empty)
	}
	return out, nil
}
