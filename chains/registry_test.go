package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupByNameIDAndFuzzy(t *testing.T) {
	r := Default()

	c, err := r.Get("BNB")
	require.NoError(t, err)
	assert.Equal(t, uint64(56), c.ID)
	assert.Equal(t, "0x38", c.HexID())

	c, err = r.ByChainID("0xa4b1")
	require.NoError(t, err)
	assert.Equal(t, "arbitrum", c.Name)

	c, err = r.Find("137")
	require.NoError(t, err)
	assert.Equal(t, "polygon", c.Name)

	c, err = r.Find("optmsm")
	require.NoError(t, err)
	assert.Equal(t, "optimism", c.Name)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrChainNotFound)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(Mainnet, Chain{Name: "eth", ID: 999})
	assert.Error(t, err)

	_, err = NewRegistry(Mainnet, Chain{Name: "other", ID: 1})
	assert.Error(t, err)
}

func TestWithReplacesByIDAndKeepsOthers(t *testing.T) {
	custom := Chain{Name: "bsc", ID: 56, Token: "BNB", DefaultNodes: map[string]string{"mine": "http://localhost:8545"}}
	r, err := Default().With(custom, Chain{Name: "anvil", ID: 31337, Token: "ETH"})
	require.NoError(t, err)

	c, err := r.Get("bsc")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:8545"}, c.RPCURLs())

	_, err = r.Get("binance")
	assert.ErrorIs(t, err, ErrChainNotFound)

	all := r.All()
	assert.Len(t, all, len(Builtin())+1)
	assert.Equal(t, "anvil", all[len(all)-1].Name)

	// the original registry is untouched
	_, err = Default().Get("anvil")
	assert.Error(t, err)
}

func TestNodeEnvOverride(t *testing.T) {
	t.Setenv("BASE_MAINNET_NODE", "http://127.0.0.1:9545")
	assert.Equal(t, []string{"http://127.0.0.1:9545"}, Base.RPCURLs())
}

func TestAddChainParams(t *testing.T) {
	p := Polygon.AddChainParams()
	assert.Equal(t, "0x89", p.ChainID)
	assert.Equal(t, "Polygon", p.ChainName)
	assert.Equal(t, 18, p.NativeCurrency.Decimals)
	assert.Equal(t, "POL", p.NativeCurrency.Symbol)
}
