package eip1193

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ChainID is a 0x-prefixed hexadecimal chain id, eg "0x1".
type ChainID = string

// Balance is the hexadecimal wei balance returned by eth_getBalance.
type Balance = string

// ProviderAccounts is an ordered list of addresses.
type ProviderAccounts = []string

type TransactionObject struct {
	Data                 string `json:"data,omitempty"`
	From                 string `json:"from"`
	Gas                  string `json:"gas,omitempty"`
	GasLimit             string `json:"gasLimit,omitempty"`
	GasPrice             string `json:"gasPrice,omitempty"`
	MaxFeePerGas         string `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas,omitempty"`
	To                   string `json:"to"`
	Value                string `json:"value,omitempty"`
	Nonce                string `json:"nonce,omitempty"`
}

type NativeCurrency struct {
	Name     string `json:"name,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals int    `json:"decimals"`
}

// AddChainParams is the single element of a wallet_addEthereumChain request.
type AddChainParams struct {
	ChainID        ChainID        `json:"chainId"`
	ChainName      string         `json:"chainName,omitempty"`
	NativeCurrency NativeCurrency `json:"nativeCurrency"`
	RPCURLs        []string       `json:"rpcUrls"`
}

type SwitchChainParams struct {
	ChainID ChainID `json:"chainId"`
}

// Block tags accepted as the second eth_getBalance parameter.
const (
	BlockLatest   = "latest"
	BlockEarliest = "earliest"
	BlockPending  = "pending"
)

// BalanceParams builds the positional params of eth_getBalance. An empty
// block defaults to latest.
func BalanceParams(address string, block string) []any {
	if block == "" {
		block = BlockLatest
	}
	return []any{address, block}
}

// BlockNumberParam renders a block number as the hex quantity nodes expect.
func BlockNumberParam(n uint64) string {
	return hexutil.EncodeUint64(n)
}

func SignTransactionParams(tx TransactionObject) []any {
	return []any{tx}
}

func SignMessageParams(address, message string) []any {
	return []any{address, message}
}

func SignTypedDataParams(address string, data apitypes.TypedData) []any {
	return []any{address, data}
}

func SwitchChainParamsList(chainID ChainID) []any {
	return []any{SwitchChainParams{ChainID: chainID}}
}

func AddChainParamsList(params ...AddChainParams) []any {
	out := make([]any, 0, len(params))
	for _, p := range params {
		out = append(out, p)
	}
	return out
}
