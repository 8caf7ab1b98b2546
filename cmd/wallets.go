package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/walletkit/config"
	"github.com/tranvictor/walletkit/device"
	"github.com/tranvictor/walletkit/ui"
	"github.com/tranvictor/walletkit/wallet"
)

type walletRow struct {
	Label     string `json:"label"`
	Namespace string `json:"namespace"`
	Platforms string `json:"platforms"`
	Eligible  bool   `json:"eligible"`
	Patch     string `json:"patch"`
}

func walletRows(rt *config.Runtime) []walletRow {
	rows := make([]walletRow, 0, len(rt.Modules))
	for _, m := range rt.Modules {
		platforms := m.Platforms()
		names := make([]string, len(platforms))
		for i, p := range platforms {
			names[i] = string(p)
		}
		if len(names) == 0 {
			names = []string{string(device.All)}
		}
		row := walletRow{
			Label:     m.Label(),
			Namespace: m.Namespace(),
			Platforms: strings.Join(names, ", "),
			Eligible:  len(platforms) == 0 || rt.Device.MatchesAny(platforms),
			Patch:     "?",
		}
		if w, ok := m.(*wallet.Injected); ok {
			row.Patch = describePatch(w.Patch)
		}
		rows = append(rows, row)
	}
	return rows
}

func listWallets(u ui.UI, rt *config.Runtime) error {
	rows := walletRows(rt)
	if config.JSONOutput {
		return printJSON(u, rows)
	}
	u.Info("Device: %s", rt.Device)
	if rt.RulesSHA256 != "" {
		u.Info("Custom identity rules: %s", rt.RulesSHA256)
	}
	table := make([][]string, 0, len(rows))
	for i, r := range rows {
		eligible := u.Style(ui.Good("yes"))
		if !r.Eligible {
			eligible = u.Style(ui.Caution("no"))
		}
		table = append(table, []string{fmt.Sprintf("%d", i+1), r.Label, r.Namespace, r.Platforms, eligible, r.Patch})
	}
	u.Table([]string{"#", "Wallet", "Namespace", "Platforms", "Here", "Patch"}, table)
	return nil
}

var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "List the injected wallets walletkit recognises, in detection order",
	Long: `Lists built-in and custom injected wallets in the order they are tried
during discovery. "Here" tells whether the wallet is expected on the device
given by --os, --browser and --device-type (or the config file).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listWallets(appUI, appConfig)
	},
}

func init() {
	rootCmd.AddCommand(walletsCmd)
}
