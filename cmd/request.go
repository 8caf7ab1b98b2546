package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/tranvictor/walletkit/config"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/ui"
)

// parseParams accepts a JSON array or object; anything else is sent as a
// single positional string.
func parseParams(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		var params any
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return nil, fmt.Errorf("params are not valid JSON: %w", err)
		}
		return params, nil
	}
	return []any{raw}, nil
}

func request(ctx context.Context, u ui.UI, method, rawParams string) error {
	params, err := parseParams(rawParams)
	if err != nil {
		return err
	}
	f, d, err := connect(ctx, u, appConfig, config.Wallet)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Disconnect(); err != nil {
			log.Debug("Disconnect failed", "wallet", d.Label, "err", err)
		}
	}()

	args := eip1193.RequestArguments{Method: eip1193.Method(method), Params: params}
	log.Debug("Sending request", "wallet", d.Label, "method", method)
	result, err := f.Request(ctx, args)
	if err != nil {
		reportError(u, err)
		return fmt.Errorf("%s via %s failed", method, d.Label)
	}
	if !config.JSONOutput {
		u.Success("%s via %s:", method, d.Label)
	}
	return printJSON(u, result)
}

var requestCmd = &cobra.Command{
	Use:   "request <method> [params]",
	Short: "Send one EIP-1193 request through a discovered wallet",
	Long: `Discovers the wallets of --host, picks one (--wallet, fuzzy matched, or
asks when there are several) and sends the request through its normalised
provider. params is a JSON array or object.

Example:
	walletkit request -H host.yaml -w metamask eth_chainId
	walletkit request -H host.yaml wallet_switchEthereumChain '[{"chainId":"0x38"}]'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		raw := ""
		if len(args) > 1 {
			raw = args[1]
		}
		return request(ctx, appUI, args[0], raw)
	},
}

func init() {
	addHostFlag(requestCmd)
	requestCmd.Flags().StringVarP(&config.Wallet, "wallet", "w", "", "wallet to use, fuzzy matched against discovered labels")
	rootCmd.AddCommand(requestCmd)
}
