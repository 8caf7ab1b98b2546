package identity

import (
	"math"
	"reflect"

	"github.com/tranvictor/walletkit/host"
)

// Snapshot is the normalized, read-only view of an object's observable
// properties that predicates are evaluated against.
type Snapshot struct {
	truthy  map[string]bool
	strings map[string]string
	methods map[string]bool
}

// Observe reads o once. A nil object yields an empty snapshot.
func Observe(o *host.Object) Snapshot {
	s := Snapshot{
		truthy:  map[string]bool{},
		strings: map[string]string{},
		methods: map[string]bool{},
	}
	if o == nil {
		return s
	}
	for name, v := range o.Properties {
		s.truthy[name] = truthy(v)
		if str, ok := v.(string); ok {
			s.strings[name] = str
		}
	}
	for _, m := range o.Methods {
		s.methods[m] = true
	}
	if o.Callable() {
		s.methods["request"] = true
	}
	return s
}

// Flag reports whether the property is present and truthy.
func (s Snapshot) Flag(name string) bool {
	return s.truthy[name]
}

func (s Snapshot) Text(name string) (string, bool) {
	v, found := s.strings[name]
	return v, found
}

func (s Snapshot) Method(name string) bool {
	return s.methods[name]
}

// Flags lists every truthy property, for diagnostics.
func (s Snapshot) Flags() []string {
	out := []string{}
	for name, on := range s.truthy {
		if on {
			out = append(out, name)
		}
	}
	return out
}

// truthy follows JavaScript: nil, false, zero, NaN and "" are falsy, as
// are typed nils; any other value, empty lists and maps included, is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
