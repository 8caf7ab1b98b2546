package balance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// TokenInfo is the ERC-20 metadata needed to display a balance.
type TokenInfo struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

func (n *node) tokenInfo(ctx context.Context, token common.Address) (TokenInfo, error) {
	res, err := n.call(ctx, token, "decimals")
	if err != nil {
		return TokenInfo{}, err
	}
	if len(res) != 1 {
		return TokenInfo{}, fmt.Errorf("decimals returned %d values", len(res))
	}
	decimals, ok := res[0].(uint8)
	if !ok {
		return TokenInfo{}, fmt.Errorf("decimals returned %T", res[0])
	}
	info := TokenInfo{Decimals: int(decimals)}
	// symbol is optional in ERC-20
	if res, err = n.call(ctx, token, "symbol"); err == nil && len(res) == 1 {
		info.Symbol, _ = res[0].(string)
	}
	return info, nil
}

// TokenInfo reads decimals and symbol of token.
func (r *Reader) TokenInfo(ctx context.Context, token string) (TokenInfo, error) {
	if !common.IsHexAddress(token) {
		return TokenInfo{}, fmt.Errorf("invalid token address %q", token)
	}
	t := common.HexToAddress(token)
	return firstOf(ctx, r, func(ctx context.Context, n *node) (TokenInfo, error) {
		return n.tokenInfo(ctx, t)
	})
}

// Cache keeps token metadata between runs.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

func cacheKey(chainID uint64, token string) string {
	return fmt.Sprintf("token:%d:%s", chainID, strings.ToLower(token))
}

// CachedTokenInfo answers from c when it can and otherwise reads from r
// and stores the result. A failing cache write only logs.
func CachedTokenInfo(ctx context.Context, r *Reader, c Cache, chainID uint64, token string) (TokenInfo, error) {
	key := cacheKey(chainID, token)
	if raw, found := c.Get(key); found {
		var info TokenInfo
		if err := json.Unmarshal([]byte(raw), &info); err == nil {
			return info, nil
		}
		log.Debug("Ignoring broken cache entry", "key", key)
	}
	info, err := r.TokenInfo(ctx, token)
	if err != nil {
		return TokenInfo{}, err
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return info, nil
	}
	if err := c.Set(key, string(raw)); err != nil {
		log.Warn("Couldn't cache token info", "key", key, "err", err)
	}
	return info, nil
}
