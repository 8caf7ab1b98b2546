package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/tranvictor/walletkit/balance"
	"github.com/tranvictor/walletkit/cache"
	"github.com/tranvictor/walletkit/chains"
	"github.com/tranvictor/walletkit/config"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/facade"
	"github.com/tranvictor/walletkit/hardware"
	"github.com/tranvictor/walletkit/scanner"
	"github.com/tranvictor/walletkit/ui"
	"github.com/tranvictor/walletkit/wallet"
)

// scanPlan is everything a scan needs besides the device.
type scanPlan struct {
	Kind      hardware.Kind
	BasePaths []scanner.BasePath
	Chains    []chains.Chain
	Assets    []scanner.Asset
}

func resolveChains(reg *chains.Registry, names []string) ([]chains.Chain, error) {
	out := make([]chains.Chain, 0, len(names))
	for _, n := range names {
		c, err := reg.Find(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// parseAssets reads "LABEL:0xaddress" entries. The native token of each
// chain is always scanned first.
func parseAssets(specs []string) ([]scanner.Asset, error) {
	out := []scanner.Asset{{Label: "native"}}
	for _, s := range specs {
		label, addr, found := strings.Cut(s, ":")
		if !found || !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("asset %q: want LABEL:0xaddress", s)
		}
		out = append(out, scanner.Asset{Label: label, Address: common.HexToAddress(addr).Hex()})
	}
	return out, nil
}

// resolveBasePaths matches path against the kind's known paths by label,
// and otherwise takes it as a literal base path.
func resolveBasePaths(kind hardware.Kind, path string) ([]scanner.BasePath, error) {
	known := hardware.BasePaths(kind)
	if path == "" {
		return known, nil
	}
	for _, p := range known {
		if strings.EqualFold(p.Label, path) || p.Value == path {
			return []scanner.BasePath{p}, nil
		}
	}
	if _, err := hardware.Iterator(path); err != nil {
		return nil, err
	}
	return []scanner.BasePath{{Label: "Custom", Value: path}}, nil
}

func buildPlan(rt *config.Runtime, kind hardware.Kind) (*scanPlan, error) {
	names := config.ScanChains
	if len(names) == 0 {
		names = []string{config.Network}
	}
	cs, err := resolveChains(rt.Chains, names)
	if err != nil {
		return nil, err
	}
	assets, err := parseAssets(config.Assets)
	if err != nil {
		return nil, err
	}
	paths, err := resolveBasePaths(kind, config.BasePath)
	if err != nil {
		return nil, err
	}
	return &scanPlan{Kind: kind, BasePaths: paths, Chains: cs, Assets: assets}, nil
}

// detectKind returns the kind of the first device on the bus.
func detectKind() (hardware.Kind, error) {
	found, err := hardware.Detect()
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", hardware.ErrNoDevice
	}
	log.Debug("Detected hardware wallet", "device", found[0])
	return found[0].Kind, nil
}

// accountChooser shows the scan result and asks for one account. Funded
// accounts are offered when there are any.
type accountChooser struct {
	u      ui.UI
	chains []chains.Chain
	tokens map[string]balance.TokenInfo
}

func (c accountChooser) decimals(a scanner.Account) int {
	if len(c.chains) != 1 {
		return 0
	}
	if a.Balance.Asset.Native() {
		return c.chains[0].AddChainParams().NativeCurrency.Decimals
	}
	return c.tokens[strings.ToLower(a.Balance.Asset.Address)].Decimals
}

// tokenInfos reads metadata of the plan's tokens so balances can be shown
// in whole units. It only applies to single chain scans.
func tokenInfos(ctx context.Context, plan *scanPlan, c balance.Cache) map[string]balance.TokenInfo {
	if len(plan.Chains) != 1 || len(plan.Assets) < 2 {
		return nil
	}
	chain := plan.Chains[0]
	r := balance.ForChain(chain)
	defer r.Close()
	out := map[string]balance.TokenInfo{}
	for _, a := range plan.Assets {
		if a.Native() {
			continue
		}
		info, err := balance.CachedTokenInfo(ctx, r, c, chain.ID, a.Address)
		if err != nil {
			log.Warn("Couldn't read token info", "token", a.Label, "chain", chain.Name, "err", err)
			continue
		}
		out[strings.ToLower(a.Address)] = info
	}
	return out
}

func (c accountChooser) Choose(_ context.Context, list scanner.AccountsList, _ string) ([]scanner.Account, error) {
	offered := list.Filtered
	if len(offered) == 0 {
		c.u.Warn("No funded account among %d scanned", len(list.All))
		offered = list.All
	}
	if len(offered) == 0 {
		return nil, nil
	}
	rows := make([][]string, len(offered))
	options := make([]string, len(offered))
	for i, a := range offered {
		amount := formatUnits(a.Balance.Value, c.decimals(a))
		rows[i] = []string{fmt.Sprintf("%d", i+1), a.Address, a.DerivationPath, amount + " " + a.Balance.Asset.Label}
		options[i] = fmt.Sprintf("%s (%s)", shortAddress(a.Address), a.DerivationPath)
	}
	c.u.Table([]string{"#", "Address", "Path", "Balance"}, rows)
	i := c.u.Choose("Which account?", options)
	if i < 0 {
		return nil, nil
	}
	return []scanner.Account{offered[i]}, nil
}

func scanObserver(u ui.UI) func(scanner.Transition) {
	return func(t scanner.Transition) {
		log.Trace("Scan transition", "session", t.Session, "state", t.State, "err", t.Err)
		if t.State == scanner.BranchFailed && t.Branch != nil {
			u.Warn("Skipped %s: %s", t.Branch, t.Err)
		}
	}
}

func scanAccounts(ctx context.Context, u ui.UI, rt *config.Runtime, plan *scanPlan, deriver hardware.Deriver, chooser scanner.Chooser) ([]scanner.Account, error) {
	fetcher := &hardware.Fetcher{
		Deriver:     deriver,
		Readers:     hardware.ChainReaders(rt.Chains),
		PageSize:    rt.Limits.PageSize,
		GapLimit:    rt.Limits.GapLimit,
		MaxAccounts: rt.Limits.MaxAccounts,
	}
	opts := scanner.SelectAccountOptions{
		BasePaths:    plan.BasePaths,
		Assets:       plan.Assets,
		Chains:       plan.Chains,
		ScanAccounts: fetcher.ScanAccounts,
	}
	stop := sync.OnceFunc(u.Spinner(fmt.Sprintf("Scanning %d path(s) on %d chain(s)...", len(plan.BasePaths), len(plan.Chains))))
	defer stop()
	picked := scanner.ChooserFunc(func(ctx context.Context, list scanner.AccountsList, icon string) ([]scanner.Account, error) {
		stop()
		return chooser.Choose(ctx, list, icon)
	})
	selected, err := scanner.SelectAccounts(ctx, opts, picked,
		scanner.WithConcurrency(rt.Limits.Concurrency),
		scanner.WithObserver(scanObserver(u)),
	)
	if err != nil {
		return nil, err
	}
	return selected, nil
}

// showConnected serves the selected account through the hardware module
// and reports what a dapp would see.
func showConnected(ctx context.Context, u ui.UI, plan *scanPlan, account scanner.Account, dial hardware.DialFunc) error {
	m := &hardware.Module{Kind: plan.Kind, Account: account, Dial: dial}
	iface, err := m.Interface(ctx, wallet.GetInterfaceHelpers{Chains: plan.Chains})
	if err != nil {
		return err
	}
	f, err := facade.New(iface)
	if err != nil {
		return err
	}
	defer f.Disconnect()

	accounts, err := eip1193.Accounts(ctx, f)
	if err != nil {
		return err
	}
	chainID, err := eip1193.ChainIDOf(ctx, f)
	if err != nil {
		return err
	}
	if config.JSONOutput {
		return printJSON(u, map[string]any{
			"wallet":         m.Label(),
			"accounts":       accounts,
			"chainId":        chainID,
			"derivationPath": account.DerivationPath,
		})
	}
	u.Section(m.Label())
	u.KeyValue([][2]string{
		{"eth_accounts", strings.Join(accounts, ", ")},
		{"eth_chainId", chainID},
		{"Path", account.DerivationPath},
	})
	return nil
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a hardware wallet for accounts and pick one",
	Long: `Derives accounts from a Ledger or Trezor along one or more base paths and
reads their balances on the given chains. Each path is walked until
` + "`gap`" + ` consecutive empty accounts or ` + "`max`" + ` accounts.

Base paths for ledger: "Ledger Live" (m/44'/60'/x'/0/0), "Ledger Legacy"
(m/44'/60'/0'), "BIP44 Standard" (m/44'/60'/0'/0). Trezor uses BIP44.
Any other base path may be given literally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		kind := hardware.Kind(strings.ToLower(config.HardwareKind))
		if kind == "" {
			var err error
			if kind, err = detectKind(); err != nil {
				return err
			}
		}
		plan, err := buildPlan(appConfig, kind)
		if err != nil {
			return err
		}
		dev, err := hardware.Open(kind, appUI.Secret)
		if err != nil {
			return err
		}
		defer dev.Close()
		appUI.Info("Using %s at %s", kind, dev.URL())

		var chooser scanner.Chooser = accountChooser{
			u:      appUI,
			chains: plan.Chains,
			tokens: tokenInfos(ctx, plan, cache.Open(cache.DefaultPath())),
		}
		if config.FirstFunded {
			chooser = scanner.FirstFunded
		}
		selected, err := scanAccounts(ctx, appUI, appConfig, plan, dev, chooser)
		if err != nil {
			return err
		}
		return showConnected(ctx, appUI, plan, selected[0], nil)
	},
}

func init() {
	scanCmd.Flags().StringVarP(&config.HardwareKind, "kind", "t", "", "ledger or trezor (default: first device found)")
	scanCmd.Flags().StringVarP(&config.BasePath, "path", "p", "", "base path label or value (default: every path of the kind)")
	scanCmd.Flags().StringSliceVar(&config.ScanChains, "chains", nil, "chains to scan (default: --chain)")
	scanCmd.Flags().StringSliceVarP(&config.Assets, "asset", "a", nil, "extra token to scan as LABEL:0xaddress, repeatable")
	scanCmd.Flags().IntVar(&config.Concurrency, "concurrency", 0, "branches scanned at once")
	scanCmd.Flags().IntVar(&config.GapLimit, "gap", 0, "stop after this many consecutive empty accounts")
	scanCmd.Flags().IntVar(&config.PageSize, "page", 0, "accounts derived per page")
	scanCmd.Flags().IntVar(&config.MaxAccounts, "max", 0, "accounts derived per branch at most")
	scanCmd.Flags().BoolVar(&config.FirstFunded, "first-funded", false, "pick the first funded account without asking")
	rootCmd.AddCommand(scanCmd)
}
