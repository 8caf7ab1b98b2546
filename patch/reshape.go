package patch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tranvictor/walletkit/eip1193"
)

// Rename returns a handler that forwards the params untouched under another
// method name.
func Rename(to eip1193.Method) Handler {
	return func(ctx context.Context, args Args) (any, error) {
		return args.BaseRequest(ctx, eip1193.RequestArguments{Method: to, Params: args.Params})
	}
}

// Static returns a handler that answers with value without touching the
// provider.
func Static(value any) Handler {
	return func(context.Context, Args) (any, error) {
		return value, nil
	}
}

// HexChainID asks the provider for eth_chainId and normalizes whatever comes
// back (decimal strings, numbers) to 0x-hex.
func HexChainID() Handler {
	return func(ctx context.Context, args Args) (any, error) {
		res, err := args.BaseRequest(ctx, eip1193.RequestArguments{Method: eip1193.MethodChainID})
		if err != nil {
			return nil, err
		}
		if raw, ok := res.(json.RawMessage); ok {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("decode chain id: %w", err)
			}
			res = v
		}
		return eip1193.NormalizeChainID(res)
	}
}

// TypedDataV4 reshapes eth_signTypedData into eth_signTypedData_v4, which
// takes the typed data as a JSON string, and delegates.
func TypedDataV4() Handler {
	return func(ctx context.Context, args Args) (any, error) {
		params, err := positional(args.Params)
		if err != nil {
			return nil, err
		}
		if len(params) != 2 {
			return nil, fmt.Errorf("eth_signTypedData expects [address, typedData], got %d params", len(params))
		}
		data := params[1]
		if _, isString := data.(string); !isString {
			encoded, err := json.Marshal(data)
			if err != nil {
				return nil, fmt.Errorf("encode typed data: %w", err)
			}
			data = string(encoded)
		}
		return args.BaseRequest(ctx, eip1193.RequestArguments{
			Method: eip1193.MethodSignTypedDataV4,
			Params: []any{params[0], data},
		})
	}
}

func positional(params any) ([]any, error) {
	switch p := params.(type) {
	case []any:
		return p, nil
	case nil:
		return nil, nil
	case json.RawMessage:
		var out []any
		if err := json.Unmarshal(p, &out); err != nil {
			return nil, fmt.Errorf("params must be an array: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("params must be an array, got %T", params)
}
