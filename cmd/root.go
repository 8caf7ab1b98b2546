// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tranvictor/walletkit/config"
	"github.com/tranvictor/walletkit/ui"
)

var (
	appUI ui.UI = ui.NewTerminalUI()
	// appConfig is built from the config file before any command runs.
	appConfig *config.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "walletkit",
	Short: "Discover, normalise and scan EIP-1193 wallet providers",
	Long: fmt.Sprintf(`walletkit finds the wallet providers a host exposes, tells which wallet
each one is, and hands back a single EIP-1193 provider whatever the vendor.

It also scans hardware wallets for accounts across derivation paths, chains
and assets.

Chains, custom identity rules, custom injected wallets and scan limits are
read from %s (or the file named by %s). Every chain node can be
overridden with its env var, e.g. ETHEREUM_MAINNET_NODE, and scan limits
with %s, %s, %s and %s.`,
		config.DefaultPath(),
		config.EnvConfigFile,
		config.EnvGapLimit,
		config.EnvPageSize,
		config.EnvMaxAccounts,
		config.EnvConcurrency,
	),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(config.Verbosity)
		f, err := config.Load(config.ConfigFile)
		if err != nil {
			return err
		}
		appConfig, err = f.Build()
		return err
	},
}

// setupLogging maps verbosity 0-5 (crit to trace) onto the go-ethereum
// logger. Library packages log through it at debug and trace.
func setupLogging(verbosity int) {
	levels := []slog.Level{log.LevelCrit, log.LevelError, log.LevelWarn, log.LevelInfo, log.LevelDebug, log.LevelTrace}
	verbosity = max(0, min(verbosity, len(levels)-1))
	useColor := term.IsTerminal(int(os.Stderr.Fd()))
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, levels[verbosity], useColor)))
}

// commandContext is cancelled on interrupt so a running scan stops cleanly.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().IntVarP(&config.Verbosity, "verbosity", "v", 2, "log level: 0=crit 1=error 2=warn 3=info 4=debug 5=trace")
	rootCmd.PersistentFlags().StringVarP(&config.ConfigFile, "config", "c", "", "config file (default ~/.walletkit/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&config.Network, "chain", "k", "mainnet", "chain name, alternative name or id")
	rootCmd.PersistentFlags().StringVar(&config.DeviceOS, "os", "", "host OS name, e.g. \"macOS\", \"Android\"")
	rootCmd.PersistentFlags().StringVar(&config.DeviceBrowser, "browser", "", "host browser name, e.g. \"Chrome\", \"Opera\"")
	rootCmd.PersistentFlags().StringVar(&config.DeviceType, "device-type", "", "host device type: desktop, mobile or tablet")
	rootCmd.PersistentFlags().BoolVar(&config.JSONOutput, "json", false, "print results as JSON")

	if err := rootCmd.Execute(); err != nil {
		appUI.Error("%s", err)
		os.Exit(1)
	}
}
