package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvictor/walletkit/config"
	"github.com/tranvictor/walletkit/hardware"
	"github.com/tranvictor/walletkit/ui"
)

func showDevices(u ui.UI, found []hardware.DeviceInfo) error {
	if config.JSONOutput {
		return printJSON(u, found)
	}
	if len(found) == 0 {
		u.Warn("No Ledger or Trezor connected")
		return nil
	}
	rows := make([][]string, len(found))
	for i, d := range found {
		rows[i] = []string{
			string(d.Kind),
			d.Product,
			d.Manufacturer,
			fmt.Sprintf("%04x:%04x", d.VendorID, d.ProductID),
			d.Path,
		}
	}
	u.Table([]string{"Kind", "Product", "Manufacturer", "USB id", "Path"}, rows)
	return nil
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List connected hardware wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		found, err := hardware.Detect()
		if err != nil {
			return err
		}
		return showDevices(appUI, found)
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
