// Package chains is the registry of EVM chains wallets can be pointed at.
package chains

import (
	"os"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/tranvictor/walletkit/eip1193"
)

type Chain struct {
	Name             string            `yaml:"name" json:"name"`
	AlternativeNames []string          `yaml:"alternative_names" json:"alternative_names"`
	ID               uint64            `yaml:"chain_id" json:"chain_id"`
	Label            string            `yaml:"label" json:"label"`
	Token            string            `yaml:"token" json:"token"`
	Decimals         int               `yaml:"decimals" json:"decimals"`
	NodeVariableName string            `yaml:"node_variable_name" json:"node_variable_name"`
	DefaultNodes     map[string]string `yaml:"default_nodes" json:"default_nodes"`
}

// HexID is the chain id as wallets report it from eth_chainId.
func (c Chain) HexID() eip1193.ChainID {
	return hexutil.EncodeUint64(c.ID)
}

// Nodes returns the default nodes, or only the node named by the chain's
// env variable when it is set.
func (c Chain) Nodes() map[string]string {
	if c.NodeVariableName != "" {
		if url := strings.TrimSpace(os.Getenv(c.NodeVariableName)); url != "" {
			return map[string]string{c.NodeVariableName: url}
		}
	}
	out := make(map[string]string, len(c.DefaultNodes))
	for name, url := range c.DefaultNodes {
		out[name] = url
	}
	return out
}

// RPCURLs lists the node urls sorted by node name.
func (c Chain) RPCURLs() []string {
	nodes := c.Nodes()
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, nodes[name])
	}
	return urls
}

// AddChainParams renders the chain as a wallet_addEthereumChain parameter.
func (c Chain) AddChainParams() eip1193.AddChainParams {
	label := c.Label
	if label == "" {
		label = c.Name
	}
	return eip1193.AddChainParams{
		ChainID:   c.HexID(),
		ChainName: label,
		NativeCurrency: eip1193.NativeCurrency{
			Name:     c.Token,
			Symbol:   c.Token,
			Decimals: c.decimals(),
		},
		RPCURLs: c.RPCURLs(),
	}
}

func (c Chain) decimals() int {
	if c.Decimals == 0 {
		return 18
	}
	return c.Decimals
}
