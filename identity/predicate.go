package identity

import (
	"fmt"
	"strings"

	"github.com/tranvictor/walletkit/device"
)

type Kind string

const (
	KindFlag    Kind = "flag"    // property is truthy
	KindString  Kind = "string"  // string property equals Value
	KindMethod  Kind = "method"  // callable member is present
	KindBrowser Kind = "browser" // host browser name equals Value
	KindAll     Kind = "all"     // every term matches
	KindNot     Kind = "not"     // the single term does not match
)

// Predicate is a tagged identity check. Only the fields relevant to Kind are
// read.
type Predicate struct {
	Kind  Kind        `yaml:"kind"`
	Name  string      `yaml:"name,omitempty"`
	Value string      `yaml:"value,omitempty"`
	Terms []Predicate `yaml:"terms,omitempty"`
}

func Flag(name string) Predicate { return Predicate{Kind: KindFlag, Name: name} }

func StringEquals(name, value string) Predicate {
	return Predicate{Kind: KindString, Name: name, Value: value}
}

func Method(name string) Predicate { return Predicate{Kind: KindMethod, Name: name} }

func Browser(name device.BrowserName) Predicate {
	return Predicate{Kind: KindBrowser, Value: string(name)}
}

func All(terms ...Predicate) Predicate { return Predicate{Kind: KindAll, Terms: terms} }

func Not(term Predicate) Predicate { return Predicate{Kind: KindNot, Terms: []Predicate{term}} }

func (p Predicate) Match(s Snapshot, d device.Device) bool {
	switch p.Kind {
	case KindFlag:
		return s.Flag(p.Name)
	case KindString:
		v, found := s.Text(p.Name)
		return found && v == p.Value
	case KindMethod:
		return s.Method(p.Name)
	case KindBrowser:
		return strings.EqualFold(string(d.Browser.Name), p.Value)
	case KindAll:
		for _, t := range p.Terms {
			if !t.Match(s, d) {
				return false
			}
		}
		return len(p.Terms) > 0
	case KindNot:
		return len(p.Terms) == 1 && !p.Terms[0].Match(s, d)
	}
	return false
}

// Validate checks that the predicate is well formed.
func (p Predicate) Validate() error {
	switch p.Kind {
	case KindFlag, KindMethod:
		if p.Name == "" {
			return fmt.Errorf("%s predicate needs a name", p.Kind)
		}
	case KindString:
		if p.Name == "" || p.Value == "" {
			return fmt.Errorf("string predicate needs a name and a value")
		}
	case KindBrowser:
		if p.Value == "" {
			return fmt.Errorf("browser predicate needs a value")
		}
	case KindAll:
		if len(p.Terms) == 0 {
			return fmt.Errorf("all predicate needs at least one term")
		}
		for _, t := range p.Terms {
			if err := t.Validate(); err != nil {
				return err
			}
		}
	case KindNot:
		if len(p.Terms) != 1 {
			return fmt.Errorf("not predicate needs exactly one term")
		}
		return p.Terms[0].Validate()
	default:
		return fmt.Errorf("unknown predicate kind %q", p.Kind)
	}
	return nil
}

func (p Predicate) String() string {
	switch p.Kind {
	case KindFlag:
		return p.Name
	case KindString:
		return fmt.Sprintf("%s == %q", p.Name, p.Value)
	case KindMethod:
		return p.Name + "()"
	case KindBrowser:
		return "browser == " + p.Value
	case KindAll:
		parts := make([]string, len(p.Terms))
		for i, t := range p.Terms {
			parts[i] = t.String()
		}
		return strings.Join(parts, " && ")
	case KindNot:
		if len(p.Terms) == 1 {
			return "!(" + p.Terms[0].String() + ")"
		}
	}
	return string(p.Kind)
}
