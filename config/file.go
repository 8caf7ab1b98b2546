package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/tranvictor/walletkit/chains"
	"github.com/tranvictor/walletkit/device"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/identity"
	"github.com/tranvictor/walletkit/injected"
	"github.com/tranvictor/walletkit/patch"
	"github.com/tranvictor/walletkit/wallet"
)

// CustomWallet declares an injected wallet that is not built in. Flag is
// added to the identity registry ahead of the built-in entries.
type CustomWallet struct {
	Label       string             `yaml:"label"`
	Namespace   string             `yaml:"namespace"`
	Flag        string             `yaml:"flag"`
	Match       identity.Predicate `yaml:"match"`
	Platforms   []device.Platform  `yaml:"platforms"`
	Unsupported []eip1193.Method   `yaml:"unsupported"`
	HexChainID  bool               `yaml:"hex_chain_id"`
	TypedDataV4 bool               `yaml:"typed_data_v4"`
}

type Injected struct {
	Exclude map[string]wallet.Exclusion `yaml:"exclude"`
	Custom  []CustomWallet              `yaml:"custom"`
}

// Limits bound a hardware scan. Zero means the package default.
type Limits struct {
	GapLimit    int `yaml:"gap_limit"`
	PageSize    int `yaml:"page_size"`
	MaxAccounts int `yaml:"max_accounts"`
	Concurrency int `yaml:"concurrency"`
}

// File is the YAML config file.
type File struct {
	Device        *device.Device      `yaml:"device"`
	Chains        []chains.Chain      `yaml:"chains"`
	IdentityRules string              `yaml:"identity_rules"`
	Injected      Injected            `yaml:"injected"`
	Scanner       Limits              `yaml:"scanner"`
	App           *wallet.AppMetadata `yaml:"app"`
}

// DefaultPath is ~/.walletkit/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".walletkit", "config.yaml")
}

// Load reads path, or WALLETKIT_CONFIG, or the default path. A missing
// default file is not an error; a missing explicit one is.
func Load(path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigFile)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return &File{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			log.Debug("No config file", "path", path)
			return &File{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	f, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.IdentityRules != "" && !filepath.IsAbs(f.IdentityRules) {
		f.IdentityRules = filepath.Join(filepath.Dir(path), f.IdentityRules)
	}
	log.Debug("Loaded config", "path", path, "chains", len(f.Chains), "custom", len(f.Injected.Custom))
	return f, nil
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for i, c := range f.Injected.Custom {
		if c.Label == "" || c.Flag == "" {
			return nil, fmt.Errorf("custom wallet %d: label and flag are required", i)
		}
	}
	return &f, nil
}

// Runtime is everything the commands need, built from a File, env and
// flags.
type Runtime struct {
	Device   device.Device
	Chains   *chains.Registry
	Identity *identity.Registry
	// RulesSHA256 is set when custom identity rules were loaded.
	RulesSHA256 string
	Modules     []wallet.InjectedModule
	Limits      Limits
	App         *wallet.AppMetadata
}

// Build resolves f against the environment and flag values. Flags win over
// env, env wins over the file.
func (f *File) Build() (*Runtime, error) {
	rt := &Runtime{App: f.App}

	rt.Device = device.DesktopChrome
	if f.Device != nil {
		rt.Device = *f.Device
	}
	if DeviceOS != "" {
		rt.Device.OS.Name = device.OSName(DeviceOS)
	}
	if DeviceBrowser != "" {
		rt.Device.Browser.Name = device.BrowserName(DeviceBrowser)
	}
	if DeviceType != "" {
		rt.Device.Type = device.Type(DeviceType)
	}

	reg, err := chains.Default().With(f.Chains...)
	if err != nil {
		return nil, fmt.Errorf("config chains: %w", err)
	}
	rt.Chains = reg

	var custom []identity.Entry
	if f.IdentityRules != "" {
		rules, err := identity.LoadRules(f.IdentityRules)
		if err != nil {
			return nil, err
		}
		custom = append(custom, rules.Entries...)
		rt.RulesSHA256 = rules.SHA256
	}
	for _, c := range f.Injected.Custom {
		custom = append(custom, identity.Entry{Flag: c.Flag, Label: c.Label, Match: c.Match})
	}
	rt.Identity = identity.Default()
	if len(custom) > 0 {
		if rt.Identity, err = rt.Identity.Prepend(custom...); err != nil {
			return nil, fmt.Errorf("identity rules: %w", err)
		}
	}

	opts := wallet.InjectedOptions{Filter: f.Injected.Exclude}
	for _, c := range f.Injected.Custom {
		opts.Custom = append(opts.Custom, c.module())
	}
	rt.Modules = injected.WithRegistry(opts.Apply(injected.Builtin(), rt.Device), rt.Identity)

	rt.Limits = f.Scanner.resolve()
	return rt, nil
}

func (c CustomWallet) module() *wallet.Injected {
	slot := c.Namespace
	if slot == "" {
		slot = wallet.NamespaceEthereum
	}
	p := patch.Unsupported(c.Unsupported...)
	if c.HexChainID {
		p = p.Merge(patch.Patch{eip1193.MethodChainID: patch.HexChainID()})
	}
	if c.TypedDataV4 {
		p = p.Merge(patch.Patch{eip1193.MethodSignTypedData: patch.TypedDataV4()})
	}
	return &wallet.Injected{
		Name:      c.Label,
		Slot:      slot,
		OnDevices: c.Platforms,
		Patch:     p,
	}
}

func (l Limits) resolve() Limits {
	pick := func(file int, env string, flag int) int {
		v := parseIntEnv(env, file)
		if flag != 0 {
			v = flag
		}
		return v
	}
	return Limits{
		GapLimit:    clampOrZero(pick(l.GapLimit, EnvGapLimit, GapLimit), minGapLimit, maxGapLimit),
		PageSize:    clampOrZero(pick(l.PageSize, EnvPageSize, PageSize), minPageSize, maxPageSize),
		MaxAccounts: clampOrZero(pick(l.MaxAccounts, EnvMaxAccounts, MaxAccounts), minMaxAccounts, maxMaxAccounts),
		Concurrency: clampOrZero(pick(l.Concurrency, EnvConcurrency, Concurrency), minConcurrency, maxConcurrency),
	}
}
