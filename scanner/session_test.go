package scanner

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/walletkit/chains"
)

var (
	p1  = BasePath{Label: "Ledger Live", Value: "m/44'/60'/0'/0/0"}
	p2  = BasePath{Label: "Legacy", Value: "m/44'/60'/0'"}
	p3  = BasePath{Label: "Other", Value: "m/44'/1'/0'/0"}
	eth = Asset{Label: "ETH"}
	c1  = chains.Mainnet
)

func acct(path string, balance int64) Account {
	return Account{
		Address:        "0x" + path,
		DerivationPath: path,
		Balance:        Balance{Asset: eth, Value: big.NewInt(balance)},
	}
}

func TestScanKeepsIterationOrderAndFiltersFunded(t *testing.T) {
	fetch := func(_ context.Context, o ScanOptions) ([]Account, error) {
		assert.Equal(t, "0x1", o.ChainID)
		if o.DerivationPath == p1.Value {
			return []Account{acct(p1.Value, 0)}, nil
		}
		return []Account{acct(p2.Value, 5)}, nil
	}
	list, err := Scan(context.Background(), SelectAccountOptions{
		BasePaths:    []BasePath{p1, p2},
		Chains:       []chains.Chain{c1},
		Assets:       []Asset{eth},
		ScanAccounts: fetch,
	})
	require.NoError(t, err)
	require.Len(t, list.All, 2)
	assert.Equal(t, p1.Value, list.All[0].DerivationPath)
	assert.Equal(t, p2.Value, list.All[1].DerivationPath)
	require.Len(t, list.Filtered, 1)
	assert.Equal(t, list.All[1], list.Filtered[0])
}

func TestPartialFailureResolvesWithSuccessfulBranches(t *testing.T) {
	boom := errors.New("device busy")
	s, err := NewSession(SelectAccountOptions{
		BasePaths: []BasePath{p1, p2, p3},
		Chains:    []chains.Chain{c1},
		Assets:    []Asset{eth},
		ScanAccounts: func(_ context.Context, o ScanOptions) ([]Account, error) {
			if o.DerivationPath == p2.Value {
				return nil, boom
			}
			return []Account{acct(o.DerivationPath, 1)}, nil
		},
	})
	require.NoError(t, err)

	list, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Account{acct(p1.Value, 1), acct(p3.Value, 1)}, list.All)
	assert.Equal(t, Completed, s.State())

	failures := s.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].Branch.Index)
	assert.ErrorIs(t, failures[0], boom)
}

func TestAllBranchesFailing(t *testing.T) {
	boom := errors.New("locked")
	_, err := Scan(context.Background(), SelectAccountOptions{
		BasePaths:    []BasePath{p1, p2},
		Chains:       []chains.Chain{c1, chains.BSC},
		Assets:       []Asset{eth},
		ScanAccounts: func(context.Context, ScanOptions) ([]Account, error) { return nil, boom },
	})
	var failed *ScanFailedError
	require.ErrorAs(t, err, &failed)
	assert.Len(t, failed.Failures, 4)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "0x38", failed.Failures[1].Branch.ChainID)
}

func TestNoBranchesIsAnEmptySuccess(t *testing.T) {
	list, err := Scan(context.Background(), SelectAccountOptions{
		ScanAccounts: func(context.Context, ScanOptions) ([]Account, error) {
			t.Fatal("fetcher must not be called")
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Empty(t, list.All)
}

func TestMissingFetcher(t *testing.T) {
	_, err := NewSession(SelectAccountOptions{BasePaths: []BasePath{p1}})
	assert.ErrorIs(t, err, ErrNoFetcher)
}

func TestOutOfOrderCompletionIsReordered(t *testing.T) {
	// the first branch finishes last
	release := make(chan struct{})
	fetch := func(_ context.Context, o ScanOptions) ([]Account, error) {
		if o.DerivationPath == p1.Value {
			<-release
		} else if o.DerivationPath == p3.Value {
			close(release)
		}
		return []Account{acct(o.DerivationPath, 2)}, nil
	}
	list, err := Scan(context.Background(), SelectAccountOptions{
		BasePaths:    []BasePath{p1, p2, p3},
		Chains:       []chains.Chain{c1},
		Assets:       []Asset{eth},
		ScanAccounts: fetch,
	}, WithConcurrency(3))
	require.NoError(t, err)
	assert.Equal(t, []Account{acct(p1.Value, 2), acct(p2.Value, 2), acct(p3.Value, 2)}, list.All)
	assert.Equal(t, list.All, list.Filtered)
}

func TestCancellationStopsNewFetchesAndDropsInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu     sync.Mutex
		called []string
	)
	fetch := func(ctx context.Context, o ScanOptions) ([]Account, error) {
		mu.Lock()
		called = append(called, o.DerivationPath)
		mu.Unlock()
		if o.DerivationPath == p2.Value {
			cancel()
			// in flight while cancelled, still awaited
			time.Sleep(10 * time.Millisecond)
		}
		return []Account{acct(o.DerivationPath, 3)}, nil
	}
	s, err := NewSession(SelectAccountOptions{
		BasePaths:    []BasePath{p1, p2, p3},
		Chains:       []chains.Chain{c1},
		Assets:       []Asset{eth},
		ScanAccounts: fetch,
	})
	require.NoError(t, err)

	list, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{p1.Value, p2.Value}, called)
	assert.Equal(t, []Account{acct(p1.Value, 3)}, list.All)
	assert.Equal(t, Cancelled, s.State())
}

func TestObserverSeesTransitions(t *testing.T) {
	var states []State
	s, err := NewSession(SelectAccountOptions{
		BasePaths: []BasePath{p1, p2},
		Chains:    []chains.Chain{c1},
		Assets:    []Asset{eth},
		ScanAccounts: func(_ context.Context, o ScanOptions) ([]Account, error) {
			if o.DerivationPath == p2.Value {
				return nil, errors.New("nope")
			}
			return nil, nil
		},
	}, WithObserver(func(tr Transition) { states = append(states, tr.State) }))
	require.NoError(t, err)
	assert.Equal(t, Idle, s.State())

	_, err = s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []State{Fetching, Accumulating, Fetching, BranchFailed, Completed}, states)

	_, err = s.Run(context.Background())
	assert.Error(t, err, "a session runs once")
}

func TestSelectAccounts(t *testing.T) {
	opts := SelectAccountOptions{
		BasePaths: []BasePath{p1, p2},
		Chains:    []chains.Chain{c1},
		Assets:    []Asset{eth},
		ScanAccounts: func(_ context.Context, o ScanOptions) ([]Account, error) {
			if o.DerivationPath == p1.Value {
				return []Account{acct(p1.Value, 0)}, nil
			}
			return []Account{acct(p2.Value, 9)}, nil
		},
	}
	selected, err := SelectAccounts(context.Background(), opts, FirstFunded)
	require.NoError(t, err)
	assert.Equal(t, []Account{acct(p2.Value, 9)}, selected)

	none := ChooserFunc(func(context.Context, AccountsList, string) ([]Account, error) { return nil, nil })
	_, err = SelectAccounts(context.Background(), opts, none)
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestObserverMayReadSession(t *testing.T) {
	var (
		s    *Session
		seen []State
	)
	s, err := NewSession(SelectAccountOptions{
		BasePaths: []BasePath{p1, p2},
		Chains:    []chains.Chain{c1},
		Assets:    []Asset{eth},
		ScanAccounts: func(_ context.Context, o ScanOptions) ([]Account, error) {
			return []Account{acct(o.DerivationPath, 1)}, nil
		},
	}, WithConcurrency(2), WithObserver(func(tr Transition) {
		seen = append(seen, s.State())
		_ = s.Failures()
	}))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background())
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return with an observer reading the session")
	}
	require.Len(t, seen, 5)
	assert.Equal(t, Completed, seen[4])
}

func TestSelectAccountsDropsPartialListOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opts := SelectAccountOptions{
		BasePaths: []BasePath{p1, p2},
		Chains:    []chains.Chain{c1},
		Assets:    []Asset{eth},
		ScanAccounts: func(_ context.Context, o ScanOptions) ([]Account, error) {
			if o.DerivationPath == p2.Value {
				cancel()
			}
			return []Account{acct(o.DerivationPath, 1)}, nil
		},
	}
	asked := false
	chooser := ChooserFunc(func(context.Context, AccountsList, string) ([]Account, error) {
		asked = true
		return nil, nil
	})
	selected, err := SelectAccounts(ctx, opts, chooser)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, selected)
	assert.False(t, asked)
}
