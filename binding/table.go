package binding

import "math"

// Table is an ordered list of Bindings, searched linearly. Names are not
// interned or deduplicated: a host table with a repeated name resolves to
// its first match, matching the spec's "not diagnosed" resolution policy.
type Table []Binding

// Resolve looks up name by exact byte-wise match, linear scan, first hit
// wins. It reports ok=false on a miss; it never fails loudly, since lookup
// failure is a compiler-level concern (UnknownIdentifier), not this
// package's.
func (t Table) Resolve(name string) (Binding, bool) {
	for _, b := range t {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// Builtins is the always-available table: host bindings of the same name
// shadow these. Order matches the spec's data model listing.
var Builtins = Table{
	Val("e", math.E),
	Val("pi", math.Pi),
	Fn("abs", 1, func(a []float64) float64 { return math.Abs(a[0]) }),
	Fn("sqrt", 1, func(a []float64) float64 { return math.Sqrt(a[0]) }),
}

// Resolve searches host first, then Builtins, per the resolver policy in
// spec §4.1.
func Resolve(host Table, name string) (Binding, bool) {
	if b, ok := host.Resolve(name); ok {
		return b, true
	}
	return Builtins.Resolve(name)
}
