package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/walletkit/config"
	"github.com/tranvictor/walletkit/facade"
	"github.com/tranvictor/walletkit/host"
	"github.com/tranvictor/walletkit/identity"
	"github.com/tranvictor/walletkit/namespace"
	"github.com/tranvictor/walletkit/rpcprovider"
	"github.com/tranvictor/walletkit/ui"
	"github.com/tranvictor/walletkit/wallet"
)

var errNoHost = errors.New("--host is required: a YAML capture of the host's injected objects")

// hostDialer binds host objects naming an rpc endpoint to a provider.
var hostDialer host.Dialer = rpcprovider.Dialer()

type discovered struct {
	Wallet  string   `json:"wallet"`
	Slot    string   `json:"slot"`
	Matches []string `json:"matches"`
}

func discover(ctx context.Context, rt *config.Runtime) (*namespace.Resolver, []namespace.Discovery, error) {
	if config.HostFile == "" {
		return nil, nil, errNoHost
	}
	env, err := host.LoadFile(ctx, config.HostFile, hostDialer)
	if err != nil {
		return nil, nil, err
	}
	r := namespace.NewResolver(rt.Device, rt.Modules...)
	return r, r.Discover(ctx, env), nil
}

func showDiscoveries(u ui.UI, rt *config.Runtime, ds []namespace.Discovery) error {
	out := make([]discovered, 0, len(ds))
	for _, d := range ds {
		var labels []string
		for _, id := range rt.Identity.Matches(identity.Observe(d.Object), rt.Device) {
			labels = append(labels, id.Label)
		}
		out = append(out, discovered{Wallet: d.Label, Slot: d.Slot, Matches: labels})
	}
	if config.JSONOutput {
		return printJSON(u, out)
	}
	if len(out) == 0 {
		u.Warn("No wallet found on %s", rt.Device)
		return nil
	}
	rows := make([][]string, 0, len(out))
	for i, d := range out {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), u.Style(ui.Good(d.Wallet)), d.Slot, strings.Join(d.Matches, " > ")})
	}
	u.Table([]string{"#", "Wallet", "Slot", "Identity matches"}, rows)
	return nil
}

// pickDiscovery selects by fuzzy label when query is set, the only
// discovery when there is one, and asks otherwise.
func pickDiscovery(u ui.UI, ds []namespace.Discovery, query string) (namespace.Discovery, error) {
	if len(ds) == 0 {
		return namespace.Discovery{}, fmt.Errorf("no wallet found: %w", namespace.ErrProviderUnavailable)
	}
	labels := make([]string, len(ds))
	for i, d := range ds {
		labels[i] = d.Label
	}
	switch {
	case query != "":
		i, err := bestMatch(query, labels)
		if err != nil {
			return namespace.Discovery{}, err
		}
		u.Interpret(ds[i].Label)
		return ds[i], nil
	case len(ds) == 1:
		return ds[0], nil
	}
	i := u.Choose("Which wallet?", labels)
	if i < 0 {
		return namespace.Discovery{}, fmt.Errorf("no wallet chosen")
	}
	return ds[i], nil
}

func connect(ctx context.Context, u ui.UI, rt *config.Runtime, query string) (*facade.Facade, namespace.Discovery, error) {
	r, ds, err := discover(ctx, rt)
	if err != nil {
		return nil, namespace.Discovery{}, err
	}
	d, err := pickDiscovery(u, ds, query)
	if err != nil {
		return nil, d, err
	}
	f, err := r.Connect(ctx, d, wallet.GetInterfaceHelpers{
		Chains:      rt.Chains.All(),
		AppMetadata: rt.App,
	})
	return f, d, err
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Show which wallets a captured host exposes",
	Long: `Reads a YAML capture of the host's global namespace and reports, for every
wallet found, the slot it was found in and every identity it matched in
priority order. The first match is the wallet walletkit picks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		_, ds, err := discover(ctx, appConfig)
		if err != nil {
			return err
		}
		return showDiscoveries(appUI, appConfig, ds)
	},
}

func addHostFlag(c *cobra.Command) {
	c.Flags().StringVarP(&config.HostFile, "host", "H", "", "YAML capture of the host's injected objects")
}

func init() {
	addHostFlag(discoverCmd)
	rootCmd.AddCommand(discoverCmd)
}
