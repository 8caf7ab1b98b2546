package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/walletkit/device"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/host"
	"github.com/tranvictor/walletkit/identity"
	"github.com/tranvictor/walletkit/wallet"
)

const sample = `
device:
  os: {name: Android}
  type: mobile
  browser: {name: Chrome}
chains:
  - name: sepolia
    chain_id: 11155111
    label: Sepolia
    token: ETH
    node_variable_name: SEPOLIA_NODE
    default_nodes:
      public: https://rpc.sepolia.org
injected:
  exclude:
    Opera Wallet: {disabled: true}
  custom:
    - label: Rabby
      flag: isRabby
      platforms: [desktop]
      unsupported: [wallet_addEthereumChain]
      hex_chain_id: true
scanner:
  gap_limit: 7
  page_size: 3
`

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		DeviceOS, DeviceBrowser, DeviceType = "", "", ""
		GapLimit, PageSize, MaxAccounts, Concurrency = 0, 0, 0, 0
	})
}

func labels(modules []wallet.InjectedModule) []string {
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		out = append(out, m.Label())
	}
	return out
}

func TestBuildFromFile(t *testing.T) {
	resetFlags(t)
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	rt, err := f.Build()
	require.NoError(t, err)

	assert.Equal(t, device.Android, rt.Device.OS.Name)
	assert.Equal(t, device.Mobile, rt.Device.Type)

	sepolia, err := rt.Chains.Get("Sepolia")
	require.NoError(t, err)
	assert.Equal(t, "0xaa36a7", sepolia.HexID())
	_, err = rt.Chains.Get("mainnet")
	assert.NoError(t, err)

	all := labels(rt.Modules)
	assert.NotContains(t, all, identity.LabelOpera)
	assert.Equal(t, "Rabby", all[len(all)-1])

	obj := &host.Object{Properties: map[string]any{"isMetaMask": true, "isRabby": true}}
	id, ok := rt.Identity.Resolve(identity.Observe(obj), rt.Device)
	require.True(t, ok)
	assert.Equal(t, "Rabby", id.Label)
}

func TestCustomWalletModule(t *testing.T) {
	w := CustomWallet{
		Label:       "Rabby",
		Flag:        "isRabby",
		Unsupported: []eip1193.Method{eip1193.MethodAddChain},
		HexChainID:  true,
	}.module()

	assert.Equal(t, wallet.NamespaceEthereum, w.Namespace())
	h, found := w.Patch.Lookup(eip1193.MethodAddChain)
	assert.True(t, found)
	assert.Nil(t, h)
	h, found = w.Patch.Lookup(eip1193.MethodChainID)
	assert.True(t, found)
	assert.NotNil(t, h)
	_, found = w.Patch.Lookup(eip1193.MethodSignTypedData)
	assert.False(t, found)
}

func TestParseRejectsCustomWalletWithoutFlag(t *testing.T) {
	_, err := Parse([]byte("injected:\n  custom:\n    - label: Rabby\n"))
	assert.Error(t, err)
}

func TestLimitsPrecedence(t *testing.T) {
	resetFlags(t)
	for _, key := range []string{EnvGapLimit, EnvPageSize, EnvMaxAccounts, EnvConcurrency} {
		t.Setenv(key, "")
	}
	assert.Equal(t, Limits{}, Limits{}.resolve(), "zero stays zero so package defaults apply")

	t.Setenv(EnvGapLimit, "500")
	t.Setenv(EnvMaxAccounts, "not a number")
	t.Setenv(EnvConcurrency, "4")
	Concurrency = 2

	got := Limits{GapLimit: 7, PageSize: 3, MaxAccounts: 20}.resolve()
	assert.Equal(t, Limits{GapLimit: maxGapLimit, PageSize: 3, MaxAccounts: 20, Concurrency: 2}, got)
}

func TestDeviceFlagsOverrideFile(t *testing.T) {
	resetFlags(t)
	DeviceBrowser = "Opera"
	rt, err := (&File{}).Build()
	require.NoError(t, err)
	assert.Equal(t, device.Opera, rt.Device.Browser.Name)
	assert.Equal(t, device.Desktop, rt.Device.Type)
	assert.Contains(t, labels(rt.Modules), identity.LabelOpera)
}

func TestLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfigFile, "")

	f, err := Load("")
	require.NoError(t, err, "a missing default file is fine")
	assert.Empty(t, f.Chains)

	_, err = Load(filepath.Join(home, "nope.yaml"))
	assert.Error(t, err)

	dir := filepath.Join(home, ".walletkit")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte("rules:\n  - flag: isPhantom\n    label: Phantom\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("identity_rules: rules.yaml\n"), 0o644))

	f, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rules.yaml"), f.IdentityRules)

	rt, err := f.Build()
	require.NoError(t, err)
	assert.Len(t, rt.RulesSHA256, 64)
	obj := &host.Object{Properties: map[string]any{"isPhantom": true}}
	id, ok := rt.Identity.Resolve(identity.Observe(obj), rt.Device)
	require.True(t, ok)
	assert.Equal(t, "Phantom", id.Label)
}
