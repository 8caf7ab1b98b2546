package host_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/host"
)

const capture = `
slots:
  ethereum:
    rpc: http://metamask
    properties: {isMetaMask: true}
    providers:
      - rpc: http://coinbase
        properties: {isToshi: true}
      - properties: {isBraveWallet: true}
  xfi:
    properties: {}
    children:
      ethereum:
        rpc: http://xdefi
        properties: {isXDEFI: true}
  empty:
`

func dialer(dialed *[]string) host.Dialer {
	return func(_ context.Context, url string) (eip1193.Requester, eip1193.Emitter, error) {
		*dialed = append(*dialed, url)
		return eip1193.RequesterFunc(func(context.Context, eip1193.RequestArguments) (any, error) {
			return url, nil
		}), nil, nil
	}
}

func TestLoadBuildsObjectsAndDialsEndpoints(t *testing.T) {
	var dialed []string
	g, err := host.Load(context.Background(), []byte(capture), dialer(&dialed))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"http://metamask", "http://coinbase", "http://xdefi"}, dialed)
	assert.ElementsMatch(t, []string{"ethereum", "xfi"}, g.Slots())

	eth := g.Lookup("ethereum")
	require.True(t, eth.Callable())
	cands := eth.Candidates()
	require.Len(t, cands, 3)
	assert.True(t, cands[1].Callable())
	assert.False(t, cands[2].Callable())
	v, _ := cands[1].Property("isToshi")
	assert.Equal(t, true, v)

	xfi := g.Lookup("xfi.ethereum")
	require.NotNil(t, xfi)
	res, err := xfi.Provider.Request(context.Background(), eip1193.RequestArguments{Method: eip1193.MethodChainID})
	require.NoError(t, err)
	assert.Equal(t, "http://xdefi", res)
	assert.True(t, xfi.HasMethod("request"))

	assert.Nil(t, g.Lookup("xfi.nothing"))
	assert.Nil(t, g.Lookup("empty"))
}

func TestLoadFailures(t *testing.T) {
	_, err := host.Load(context.Background(), []byte(capture), nil)
	assert.ErrorContains(t, err, "no dialer configured")

	boom := errors.New("refused")
	_, err = host.Load(context.Background(), []byte(capture), func(context.Context, string) (eip1193.Requester, eip1193.Emitter, error) {
		return nil, nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = host.Load(context.Background(), []byte("slots: ["), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = host.Load(ctx, []byte(capture), dialer(new([]string)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotIsIsolatedFromLaterChanges(t *testing.T) {
	g := host.NewGlobals()
	obj := &host.Object{Properties: map[string]any{"isMetaMask": true}, Methods: []string{"b", "a"}}
	g.Set("ethereum", obj)

	snap := host.Snapshot(g, "ethereum", "ethereum", "BinanceChain")
	obj.Properties["isMetaMask"] = false
	g.Set("ethereum", nil)

	got := snap.Lookup("ethereum")
	require.NotNil(t, got)
	v, _ := got.Property("isMetaMask")
	assert.Equal(t, true, v)
	assert.Equal(t, []string{"a", "b"}, got.Methods)
	assert.Nil(t, snap.Lookup("BinanceChain"))
	assert.Nil(t, g.Lookup("ethereum"))
}
