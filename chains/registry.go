package chains

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/tranvictor/walletkit/eip1193"
)

var ErrChainNotFound = errors.New("chain not found")

var (
	Mainnet = Chain{
		Name:             "mainnet",
		AlternativeNames: []string{"ethereum", "eth"},
		ID:               1,
		Label:            "Ethereum Mainnet",
		Token:            "ETH",
		NodeVariableName: "ETHEREUM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"mainnet-publicnode": "https://ethereum-rpc.publicnode.com",
		},
	}
	BSC = Chain{
		Name:             "bsc",
		AlternativeNames: []string{"binance", "bnb"},
		ID:               56,
		Label:            "BNB Smart Chain",
		Token:            "BNB",
		NodeVariableName: "BSC_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"binance": "https://bsc-dataseed.binance.org",
		},
	}
	Polygon = Chain{
		Name:             "polygon",
		AlternativeNames: []string{"matic"},
		ID:               137,
		Label:            "Polygon",
		Token:            "POL",
		NodeVariableName: "MATIC_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"polygon-rpc": "https://polygon-rpc.com",
		},
	}
	Arbitrum = Chain{
		Name:             "arbitrum",
		ID:               42161,
		Label:            "Arbitrum One",
		Token:            "ETH",
		NodeVariableName: "ARBITRUM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"arbitrum": "https://arb1.arbitrum.io/rpc",
		},
	}
	Optimism = Chain{
		Name:             "optimism",
		AlternativeNames: []string{"op"},
		ID:               10,
		Label:            "OP Mainnet",
		Token:            "ETH",
		NodeVariableName: "OPTIMISM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"optimism": "https://mainnet.optimism.io",
		},
	}
	Base = Chain{
		Name:             "base",
		ID:               8453,
		Label:            "Base",
		Token:            "ETH",
		NodeVariableName: "BASE_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"public-base": "https://mainnet.base.org",
		},
	}
)

// Builtin lists the chains known without any config.
func Builtin() []Chain {
	return []Chain{Mainnet, BSC, Polygon, Arbitrum, Optimism, Base}
}

// Registry indexes chains by name, alternative name and id. Registration
// order is kept for listing.
type Registry struct {
	chains []Chain
	byName map[string]int
	byID   map[uint64]int
}

func NewRegistry(chains ...Chain) (*Registry, error) {
	r := &Registry{
		byName: map[string]int{},
		byID:   map[uint64]int{},
	}
	for _, c := range chains {
		if err := r.add(c, false); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(c Chain, override bool) error {
	if c.Name == "" {
		return fmt.Errorf("chain %d: name is required", c.ID)
	}
	if c.ID == 0 {
		return fmt.Errorf("chain '%s': chain id is required", c.Name)
	}
	if i, found := r.byID[c.ID]; found {
		if !override {
			return fmt.Errorf("chain with id %d already exists", c.ID)
		}
		r.remove(i)
	}
	names := append([]string{c.Name}, c.AlternativeNames...)
	for _, n := range names {
		if i, found := r.byName[strings.ToLower(n)]; found {
			if !override {
				return fmt.Errorf("chain with name or alternative name of '%s' already exists", n)
			}
			r.remove(i)
		}
	}
	r.chains = append(r.chains, c)
	r.reindex()
	return nil
}

func (r *Registry) remove(i int) {
	r.chains = append(r.chains[:i], r.chains[i+1:]...)
	r.reindex()
}

func (r *Registry) reindex() {
	r.byName = map[string]int{}
	r.byID = map[uint64]int{}
	for i, c := range r.chains {
		r.byID[c.ID] = i
		r.byName[strings.ToLower(c.Name)] = i
		for _, an := range c.AlternativeNames {
			r.byName[strings.ToLower(an)] = i
		}
	}
}

// With returns a copy of r where custom chains replace any chain sharing
// their id or one of their names.
func (r *Registry) With(custom ...Chain) (*Registry, error) {
	out, err := NewRegistry(r.chains...)
	if err != nil {
		return nil, err
	}
	for _, c := range custom {
		if err := out.add(c, true); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Registry) All() []Chain {
	return append([]Chain(nil), r.chains...)
}

func (r *Registry) Names() []string {
	res := []string{}
	for _, c := range r.chains {
		res = append(res, c.Name)
		res = append(res, c.AlternativeNames...)
	}
	return res
}

func (r *Registry) Get(name string) (Chain, error) {
	i, found := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !found {
		return Chain{}, fmt.Errorf("chain name '%s': %w", name, ErrChainNotFound)
	}
	return r.chains[i], nil
}

func (r *Registry) ByID(id uint64) (Chain, error) {
	i, found := r.byID[id]
	if !found {
		return Chain{}, fmt.Errorf("chain id %d: %w", id, ErrChainNotFound)
	}
	return r.chains[i], nil
}

// ByChainID accepts any shape eip1193.NormalizeChainID understands.
func (r *Registry) ByChainID(id any) (Chain, error) {
	hex, err := eip1193.NormalizeChainID(id)
	if err != nil {
		return Chain{}, err
	}
	n, err := eip1193.ChainIDToUint64(hex)
	if err != nil {
		return Chain{}, err
	}
	return r.ByID(n)
}

// Find resolves a user typed reference: an exact name, a chain id, or the
// best fuzzy match over names.
func (r *Registry) Find(query string) (Chain, error) {
	if c, err := r.Get(query); err == nil {
		return c, nil
	}
	if c, err := r.ByChainID(query); err == nil {
		return c, nil
	}
	matches := fuzzy.Find(strings.ToLower(query), r.Names())
	if len(matches) == 0 {
		return Chain{}, fmt.Errorf("chain '%s': %w", query, ErrChainNotFound)
	}
	return r.Get(matches[0].Str)
}

// File is the YAML layout of a custom chains file.
type File struct {
	Chains []Chain `yaml:"chains"`
}

func LoadFile(path string) ([]Chain, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chains file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse chains file %s: %w", path, err)
	}
	return f.Chains, nil
}

// Default returns a registry over the built-in chains.
func Default() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(err)
	}
	return r
}
