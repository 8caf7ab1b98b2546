package hardware

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/walletkit/chains"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/facade"
	"github.com/tranvictor/walletkit/rpcprovider"
	"github.com/tranvictor/walletkit/scanner"
	"github.com/tranvictor/walletkit/wallet"
)

// pathDeriver derives a stable fake address from the path.
type pathDeriver struct {
	derived []string
	failAt  string
}

func (d *pathDeriver) Derive(path accounts.DerivationPath) (common.Address, error) {
	d.derived = append(d.derived, path.String())
	if path.String() == d.failAt {
		return common.Address{}, errors.New("device locked")
	}
	return common.BytesToAddress(crypto.Keccak256([]byte(path.String()))), nil
}

// fundedReader reports a balance for the addresses of funded paths.
type fundedReader map[common.Address]int64

func (f fundedReader) Of(_ context.Context, _ string, address string) (*big.Int, error) {
	return big.NewInt(f[common.HexToAddress(address)]), nil
}

func addrOf(path string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(path)))
}

func readersOf(r BalanceReader) ReaderFor {
	return func(eip1193.ChainID) (BalanceReader, error) { return r, nil }
}

func TestIterators(t *testing.T) {
	next, err := Iterator(LedgerLive.Value)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/60'/0'/0/0", next().String())
	first := next()
	assert.Equal(t, "m/44'/60'/1'/0/0", first.String())
	next()
	assert.Equal(t, "m/44'/60'/1'/0/0", first.String(), "returned paths are not reused")

	next, err = Iterator(LedgerLegacy.Value)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/60'/0'/0", next().String())
	assert.Equal(t, "m/44'/60'/0'/1", next().String())

	next, err = Iterator(BIP44.Value)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/60'/0'/0/0", next().String())
	assert.Equal(t, "m/44'/60'/0'/0/1", next().String())

	_, err = Iterator("m/x'/x'")
	assert.Error(t, err)
	_, err = Iterator("not a path")
	assert.Error(t, err)
}

func TestFetcherStopsAfterGapOfEmptyAccounts(t *testing.T) {
	d := &pathDeriver{}
	f := &Fetcher{
		Deriver:  d,
		Readers:  readersOf(fundedReader{addrOf("m/44'/60'/0'/0/3"): 10}),
		PageSize: 5,
		GapLimit: 5,
	}
	accs, err := f.ScanAccounts(context.Background(), scanner.ScanOptions{
		DerivationPath: BIP44.Value,
		ChainID:        "0x1",
		Asset:          scanner.Asset{Label: "ETH"},
	})
	require.NoError(t, err)
	// index 3 resets the gap, so a second page runs and ends it
	assert.Len(t, accs, 10)
	assert.Equal(t, "m/44'/60'/0'/0/0", accs[0].DerivationPath)
	assert.Equal(t, int64(10), accs[3].Balance.Value.Int64())
	assert.Equal(t, addrOf("m/44'/60'/0'/0/3").Hex(), accs[3].Address)
	assert.Equal(t, "ETH", accs[3].Balance.Asset.Label)
	assert.Len(t, d.derived, 10)
}

func TestFetcherRespectsMaxAccounts(t *testing.T) {
	funded := fundedReader{}
	for i := 0; i < 20; i++ {
		funded[addrOf(accounts.DerivationPath{0x80000000 + 44, 0x80000000 + 60, 0x80000000 + 0, 0, uint32(i)}.String())] = 1
	}
	f := &Fetcher{Deriver: &pathDeriver{}, Readers: readersOf(funded), MaxAccounts: 7}
	accs, err := f.ScanAccounts(context.Background(), scanner.ScanOptions{DerivationPath: BIP44.Value})
	require.NoError(t, err)
	assert.Len(t, accs, 7)
}

func TestFetcherFailsTheBranchOnDeriveError(t *testing.T) {
	f := &Fetcher{
		Deriver: &pathDeriver{failAt: "m/44'/60'/0'/0/2"},
		Readers: readersOf(fundedReader{}),
	}
	_, err := f.ScanAccounts(context.Background(), scanner.ScanOptions{DerivationPath: BIP44.Value})
	assert.ErrorContains(t, err, "device locked")
}

func TestFetcherDrivenByScanner(t *testing.T) {
	funded := fundedReader{addrOf("m/44'/60'/1'/0/0"): 3}
	f := &Fetcher{Deriver: &pathDeriver{}, Readers: readersOf(funded), GapLimit: 2, PageSize: 2}
	list, err := scanner.Scan(context.Background(), scanner.SelectAccountOptions{
		BasePaths:    []scanner.BasePath{LedgerLive, LedgerLegacy},
		Chains:       []chains.Chain{chains.Mainnet},
		Assets:       []scanner.Asset{{Label: "ETH"}},
		ScanAccounts: f.ScanAccounts,
	})
	require.NoError(t, err)
	require.Len(t, list.Filtered, 1)
	assert.Equal(t, "m/44'/60'/1'/0/0", list.Filtered[0].DerivationPath)
	// live: 0,1 then 2,3 ; legacy: 0,1
	assert.Len(t, list.All, 6)
}

type nodeService struct {
	chainID uint64
}

func (s *nodeService) GetBalance(string, string) string {
	if s.chainID == 56 {
		return "0x38"
	}
	return "0x1"
}

func inProcDial(t *testing.T) DialFunc {
	servers := map[string]*rpc.Server{}
	for url, id := range map[string]uint64{"mainnet": 1, "bsc": 56} {
		s := rpc.NewServer()
		require.NoError(t, s.RegisterName("eth", &nodeService{chainID: id}))
		servers[url] = s
		t.Cleanup(s.Stop)
	}
	return func(_ context.Context, url string) (eip1193.Requester, error) {
		s, found := servers[url]
		if !found {
			return nil, errors.New("unknown node " + url)
		}
		return rpcprovider.New(rpc.DialInProc(s)), nil
	}
}

func TestModuleServesSelectedAccountAndSwitchesChains(t *testing.T) {
	mainnet := chains.Chain{Name: "mainnet", ID: 1, DefaultNodes: map[string]string{"n": "mainnet"}}
	bsc := chains.Chain{Name: "bsc", ID: 56, DefaultNodes: map[string]string{"n": "bsc"}}

	m := &Module{Kind: Ledger, Account: scanner.Account{Address: "0xabc"}, Dial: inProcDial(t)}
	assert.Equal(t, "Ledger", m.Label())

	iface, err := m.Interface(context.Background(), wallet.GetInterfaceHelpers{Chains: []chains.Chain{mainnet, bsc}})
	require.NoError(t, err)
	f, err := facade.New(iface)
	require.NoError(t, err)
	t.Cleanup(func() { f.Disconnect() })

	ctx := context.Background()
	accs, err := eip1193.RequestAccounts(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, eip1193.ProviderAccounts{"0xabc"}, accs)

	bal, err := eip1193.GetBalance(ctx, f, "0xabc", "")
	require.NoError(t, err)
	assert.Equal(t, "0x1", bal)

	changed := make(chan eip1193.ChainID, 1)
	_, err = f.On(eip1193.EventChainChanged, eip1193.ChainListener(func(id eip1193.ChainID) { changed <- id }))
	require.NoError(t, err)

	require.NoError(t, eip1193.SwitchChain(ctx, f, "0x38"))
	select {
	case id := <-changed:
		assert.Equal(t, "0x38", id)
	case <-time.After(2 * time.Second):
		t.Fatal("no chainChanged")
	}
	id, err := eip1193.ChainIDOf(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, "0x38", id)

	bal, err = eip1193.GetBalance(ctx, f, "0xabc", "")
	require.NoError(t, err)
	assert.Equal(t, "0x38", bal)

	err = eip1193.SwitchChain(ctx, f, "0x89")
	assert.ErrorIs(t, err, eip1193.ErrChainDisconnected)

	_, err = eip1193.Sign(ctx, f, "0xabc", "0x00")
	assert.ErrorIs(t, err, eip1193.ErrUnsupportedMethod)
}

func TestModuleNeedsChains(t *testing.T) {
	_, err := (&Module{Kind: Trezor}).Interface(context.Background(), wallet.GetInterfaceHelpers{})
	assert.ErrorIs(t, err, ErrNoChains)
}
