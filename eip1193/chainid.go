package eip1193

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// NormalizeChainID turns the chain id shapes wallets actually emit (hex
// strings, decimal strings, numbers) into a lowercase 0x-hex ChainID.
func NormalizeChainID(v any) (ChainID, error) {
	switch id := v.(type) {
	case string:
		s := strings.TrimSpace(id)
		if s == "" {
			return "", fmt.Errorf("empty chain id")
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			n, ok := new(big.Int).SetString(s[2:], 16)
			if !ok || n.Sign() < 0 {
				return "", fmt.Errorf("invalid hex chain id %q", id)
			}
			return hexutil.EncodeBig(n), nil
		}
		n, ok := new(big.Int).SetString(s, 10)
		if !ok || n.Sign() < 0 {
			return "", fmt.Errorf("invalid chain id %q", id)
		}
		return hexutil.EncodeBig(n), nil
	case int:
		if id < 0 {
			return "", fmt.Errorf("invalid chain id %d", id)
		}
		return hexutil.EncodeUint64(uint64(id)), nil
	case int64:
		if id < 0 {
			return "", fmt.Errorf("invalid chain id %d", id)
		}
		return hexutil.EncodeUint64(uint64(id)), nil
	case uint64:
		return hexutil.EncodeUint64(id), nil
	case float64:
		if id < 0 || id != float64(uint64(id)) {
			return "", fmt.Errorf("invalid chain id %v", id)
		}
		return hexutil.EncodeUint64(uint64(id)), nil
	case json.Number:
		return NormalizeChainID(id.String())
	case hexutil.Uint64:
		return hexutil.EncodeUint64(uint64(id)), nil
	case hexutil.Big:
		return hexutil.EncodeBig((*big.Int)(&id)), nil
	case *big.Int:
		if id == nil || id.Sign() < 0 {
			return "", fmt.Errorf("invalid chain id %v", id)
		}
		return hexutil.EncodeBig(id), nil
	}
	return "", fmt.Errorf("unsupported chain id type %T", v)
}

// ChainIDToUint64 parses a hex ChainID.
func ChainIDToUint64(id ChainID) (uint64, error) {
	return hexutil.DecodeUint64(id)
}
