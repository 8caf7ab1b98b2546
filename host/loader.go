package host

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tranvictor/walletkit/eip1193"
)

// ObjectSpec is the on-disk description of an injected object.
type ObjectSpec struct {
	Properties map[string]any         `yaml:"properties"`
	Methods    []string               `yaml:"methods"`
	RPC        string                 `yaml:"rpc"`
	Providers  []ObjectSpec           `yaml:"providers"`
	Children   map[string]*ObjectSpec `yaml:"children"`
}

// FileSpec is a captured host environment: slot name to object.
type FileSpec struct {
	Slots map[string]*ObjectSpec `yaml:"slots"`
}

// Dialer binds an object to a provider endpoint. The returned emitter may be
// nil.
type Dialer func(ctx context.Context, url string) (eip1193.Requester, eip1193.Emitter, error)

// LoadFile reads a YAML host capture and materializes it into Globals,
// dialing every object that names an rpc endpoint.
func LoadFile(ctx context.Context, path string, dial Dialer) (*Globals, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read host file: %w", err)
	}
	return Load(ctx, raw, dial)
}

func Load(ctx context.Context, raw []byte, dial Dialer) (*Globals, error) {
	var spec FileSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse host file: %w", err)
	}
	g := NewGlobals()
	for name, objSpec := range spec.Slots {
		if objSpec == nil {
			continue
		}
		obj, err := build(ctx, *objSpec, dial, name)
		if err != nil {
			return nil, err
		}
		g.Set(name, obj)
	}
	return g, nil
}

func build(ctx context.Context, spec ObjectSpec, dial Dialer, where string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	obj := &Object{
		Properties: spec.Properties,
		Methods:    spec.Methods,
	}
	if obj.Properties == nil {
		obj.Properties = map[string]any{}
	}
	if spec.RPC != "" {
		if dial == nil {
			return nil, fmt.Errorf("%s: rpc endpoint given but no dialer configured", where)
		}
		p, em, err := dial(ctx, spec.RPC)
		if err != nil {
			return nil, fmt.Errorf("%s: dial %s: %w", where, spec.RPC, err)
		}
		obj.Provider = p
		obj.Emitter = em
	}
	for i, ps := range spec.Providers {
		child, err := build(ctx, ps, dial, fmt.Sprintf("%s.providers[%d]", where, i))
		if err != nil {
			return nil, err
		}
		obj.Providers = append(obj.Providers, child)
	}
	for name, cs := range spec.Children {
		if cs == nil {
			continue
		}
		child, err := build(ctx, *cs, dial, where+"."+name)
		if err != nil {
			return nil, err
		}
		if obj.Children == nil {
			obj.Children = map[string]*Object{}
		}
		obj.Children[name] = child
	}
	return obj, nil
}
