package cmd

import (
	"encoding/json"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/patch"
	"github.com/tranvictor/walletkit/ui"
)

func printJSON(u ui.UI, v any) error {
	enc := json.NewEncoder(u.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportError prints err, with its EIP-1193 code when it carries one.
func reportError(u ui.UI, err error) {
	if rpcErr, ok := eip1193.AsRpcError(err); ok {
		u.Error("%s (code %d)", rpcErr.Message, rpcErr.Code)
		return
	}
	u.Error("%s", err)
}

// describePatch summarises a patch as "method (unsupported)" or
// "method (patched)", sorted by method.
func describePatch(p patch.Patch) string {
	if len(p) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(p))
	for m, h := range p {
		kind := "patched"
		if h == nil {
			kind = "unsupported"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", m, kind))
	}
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}

// bestMatch returns the index of the candidate that best fuzzy-matches
// query, preferring an exact case-insensitive hit.
func bestMatch(query string, candidates []string) (int, error) {
	for i, c := range candidates {
		if strings.EqualFold(c, query) {
			return i, nil
		}
	}
	matches := fuzzy.Find(strings.ToLower(query), lowered(candidates))
	if len(matches) == 0 {
		return -1, fmt.Errorf("nothing matches %q, have: %s", query, strings.Join(candidates, ", "))
	}
	return matches[0].Index, nil
}

func lowered(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// formatUnits renders value with decimals, trimming trailing zeros.
func formatUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	if decimals <= 0 {
		return value.String()
	}
	s := new(big.Rat).SetFrac(value, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)).FloatString(decimals)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func shortAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:8] + "…" + addr[len(addr)-6:]
}
