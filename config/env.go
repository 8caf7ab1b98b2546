package config

import (
	"os"
	"strconv"
)

const (
	EnvConfigFile  = "WALLETKIT_CONFIG"
	EnvGapLimit    = "WALLETKIT_GAP_LIMIT"
	EnvPageSize    = "WALLETKIT_PAGE_SIZE"
	EnvMaxAccounts = "WALLETKIT_MAX_ACCOUNTS"
	EnvConcurrency = "WALLETKIT_CONCURRENCY"
)

const (
	minGapLimit, maxGapLimit       = 1, 100
	minPageSize, maxPageSize       = 1, 50
	minMaxAccounts, maxMaxAccounts = 1, 1000
	minConcurrency, maxConcurrency = 1, 16
)

func parseIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampOrZero keeps zero, which means "use the package default".
func clampOrZero(v, lo, hi int) int {
	if v == 0 {
		return 0
	}
	return clampInt(v, lo, hi)
}
