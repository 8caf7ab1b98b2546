package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RuleFile is the YAML layout of a custom identity rules file.
type RuleFile struct {
	Rules []Entry `yaml:"rules"`
}

// LoadedRules carries parsed entries together with the SHA-256 of the file
// they came from, so a resolution can be traced back to an exact rule set.
type LoadedRules struct {
	Entries []Entry
	SHA256  string
}

func LoadRules(path string) (*LoadedRules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity rules: %w", err)
	}
	return ParseRules(raw)
}

func ParseRules(raw []byte) (*LoadedRules, error) {
	var f RuleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse identity rules: %w", err)
	}
	// validate through the registry constructor so loaded files obey the
	// same rules as built-in entries
	if _, err := NewRegistry(f.Rules...); err != nil {
		return nil, fmt.Errorf("invalid identity rules: %w", err)
	}
	sum := sha256.Sum256(raw)
	return &LoadedRules{
		Entries: f.Rules,
		SHA256:  hex.EncodeToString(sum[:]),
	}, nil
}
