// Package plugin implements the community-decoder contract (§4.H): a
// stateless, side-effect-free enrichment hook the Walker calls at every
// hop. Plugin output is informational only — it never changes routing
// choices (spec.md §4.H).
package plugin

import "fmt"

// Kind tags the accepted shapes of a decoded Value, per spec.md §9's
// "enumerate the accepted value shapes in the plugin contract" note.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

// Value is a small tagged union a plugin may return for a single label —
// deliberately not `any`, so the Walker never has to type-switch on
// arbitrary dynamic data before copying it into a Hop-Result.
type Value struct {
	Kind Kind
	Str  string
	Int  int
	Bool bool
}

func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Int(i int) Value       { return Value{Kind: KindInt, Int: i} }
func Bool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }

// GoString renders the value for logging/JSON fallback.
func (v Value) GoString() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return ""
	}
}

// MarshalJSON renders the underlying primitive rather than the wrapper,
// so hop.plugin_labels serializes as plain JSON values over the wire.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return fmt.Appendf(nil, "%q", v.Str), nil
	case KindInt:
		return fmt.Appendf(nil, "%d", v.Int), nil
	case KindBool:
		return fmt.Appendf(nil, "%t", v.Bool), nil
	default:
		return []byte("null"), nil
	}
}

// Plugin decodes BGP path attributes into informational labels. Decoders
// must be stateless, purely functional, and side-effect free (spec.md
// §4.H).
type Plugin interface {
	Name() string
	Decode(communities []string, localPref *int) map[string]Value
}
