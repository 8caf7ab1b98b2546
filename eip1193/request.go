// Package eip1193 holds the request/response and event vocabulary every wallet
// provider is normalized to.
package eip1193

import (
	"context"
	"encoding/json"
	"fmt"
)

type Method string

const (
	MethodAccounts        Method = "eth_accounts"
	MethodGetBalance      Method = "eth_getBalance"
	MethodRequestAccounts Method = "eth_requestAccounts"
	MethodChainID         Method = "eth_chainId"
	MethodSignTransaction Method = "eth_signTransaction"
	MethodSign            Method = "eth_sign"
	MethodSignTypedData   Method = "eth_signTypedData"
	MethodSwitchChain     Method = "wallet_switchEthereumChain"
	MethodAddChain        Method = "wallet_addEthereumChain"

	// MethodSignTypedDataV4 is not part of the normalized surface; some
	// wallets only answer typed data requests under this name.
	MethodSignTypedDataV4 Method = "eth_signTypedData_v4"
)

// SupportedMethods lists the methods a facade is expected to answer, in the
// order they are documented.
var SupportedMethods = []Method{
	MethodAccounts,
	MethodGetBalance,
	MethodRequestAccounts,
	MethodChainID,
	MethodSignTransaction,
	MethodSign,
	MethodSignTypedData,
	MethodSwitchChain,
	MethodAddChain,
}

func (m Method) Supported() bool {
	for _, s := range SupportedMethods {
		if s == m {
			return true
		}
	}
	return false
}

// RequestArguments is the single argument of an EIP-1193 request call.
// Params is kept exactly as the caller supplied it.
type RequestArguments struct {
	Method Method `json:"method"`
	Params any    `json:"params,omitempty"`
}

// RequestFunc is the shape of every request entry point: raw providers,
// patched requests and facades all expose one.
type RequestFunc func(ctx context.Context, args RequestArguments) (any, error)

// Requester is anything that can answer EIP-1193 requests.
type Requester interface {
	Request(ctx context.Context, args RequestArguments) (any, error)
}

// RequesterFunc adapts a RequestFunc to the Requester interface.
type RequesterFunc RequestFunc

func (f RequesterFunc) Request(ctx context.Context, args RequestArguments) (any, error) {
	return f(ctx, args)
}

// Decode converts a raw request result into T. Results already of type T are
// returned as is; raw JSON is unmarshalled; anything else goes through a JSON
// round trip so providers returning loosely typed values (maps, []any) still
// decode.
func Decode[T any](result any) (T, error) {
	var out T
	switch v := result.(type) {
	case T:
		return v, nil
	case json.RawMessage:
		if err := json.Unmarshal(v, &out); err != nil {
			return out, fmt.Errorf("decode result: %w", err)
		}
		return out, nil
	case []byte:
		if err := json.Unmarshal(v, &out); err != nil {
			return out, fmt.Errorf("decode result: %w", err)
		}
		return out, nil
	case nil:
		return out, nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return out, fmt.Errorf("encode result: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}
