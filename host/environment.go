package host

import (
	"strings"
	"sync"
)

// Environment is a view of the host globals.
type Environment interface {
	Lookup(slot string) *Object
}

// Globals is a mutable, concurrency safe Environment. Bridges that mirror a
// live host keep one and Set slots as they change.
type Globals struct {
	mu    sync.RWMutex
	slots map[string]*Object
}

func NewGlobals() *Globals {
	return &Globals{slots: map[string]*Object{}}
}

func (g *Globals) Set(slot string, obj *Object) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if obj == nil {
		delete(g.slots, slot)
		return
	}
	g.slots[slot] = obj
}

// Lookup resolves a slot name; dotted names ("xfi.ethereum") walk children.
func (g *Globals) Lookup(slot string) *Object {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return lookup(g.slots, slot)
}

func (g *Globals) Slots() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.slots))
	for name := range g.slots {
		out = append(out, name)
	}
	return out
}

// Snapshot reads each named slot once and returns an immutable copy.
func Snapshot(env Environment, slots ...string) Static {
	out := Static{}
	for _, s := range slots {
		if _, done := out[s]; done {
			continue
		}
		if obj := env.Lookup(s); obj != nil {
			out[s] = obj.Clone()
		}
	}
	return out
}

// Static is a fixed Environment keyed by full slot name.
type Static map[string]*Object

func (s Static) Lookup(slot string) *Object {
	if obj, found := s[slot]; found {
		return obj
	}
	return lookup(s, slot)
}

func lookup(slots map[string]*Object, slot string) *Object {
	head, rest, nested := strings.Cut(slot, ".")
	obj := slots[head]
	if !nested {
		return obj
	}
	return obj.Child(rest)
}
