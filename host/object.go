// Package host models the global namespace wallets inject themselves into:
// named slots holding provider objects, possibly stacked on top of each
// other.
package host

import (
	"sort"
	"strings"

	"github.com/tranvictor/walletkit/eip1193"
)

// Object is one injected value. Properties carries observable scalar fields
// (identity flags, vendor strings); Methods names its callable members.
type Object struct {
	Properties map[string]any
	Methods    []string

	// Provider is the callable request of the object, nil when the object
	// exposes no request.
	Provider eip1193.Requester
	Emitter  eip1193.Emitter

	// Providers lists co-installed providers aggregated by this object.
	Providers []*Object
	// Children are nested namespaces, eg the "ethereum" member of "xfi".
	Children map[string]*Object
}

// Callable reports whether the object can answer requests.
func (o *Object) Callable() bool {
	return o != nil && o.Provider != nil
}

func (o *Object) Property(name string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, found := o.Properties[name]
	return v, found
}

// HasMethod reports whether name is a callable member. A callable object
// always has "request".
func (o *Object) HasMethod(name string) bool {
	if o == nil {
		return false
	}
	if name == "request" && o.Provider != nil {
		return true
	}
	for _, m := range o.Methods {
		if m == name {
			return true
		}
	}
	return false
}

// Child resolves a dotted path below o.
func (o *Object) Child(path string) *Object {
	cur := o
	for _, part := range strings.Split(path, ".") {
		if cur == nil || part == "" {
			return nil
		}
		cur = cur.Children[part]
	}
	return cur
}

// Clone copies the observable state of o. Provider and emitter handles are
// shared, everything else is copied so later host mutations do not leak in.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := &Object{
		Properties: make(map[string]any, len(o.Properties)),
		Methods:    append([]string(nil), o.Methods...),
		Provider:   o.Provider,
		Emitter:    o.Emitter,
	}
	for k, v := range o.Properties {
		out.Properties[k] = v
	}
	sort.Strings(out.Methods)
	for _, p := range o.Providers {
		out.Providers = append(out.Providers, p.Clone())
	}
	if len(o.Children) > 0 {
		out.Children = make(map[string]*Object, len(o.Children))
		for k, c := range o.Children {
			out.Children[k] = c.Clone()
		}
	}
	return out
}

// Candidates returns the object itself followed by every stacked provider,
// skipping nils.
func (o *Object) Candidates() []*Object {
	if o == nil {
		return nil
	}
	out := []*Object{o}
	for _, p := range o.Providers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
