package queryir

// Value is a literal in a predicate.
//
// Sealed like Predicate: only String, Int and Bool exist. No floats, so
// literal rendering is exact and deterministic.
type Value interface {
	valueNode()
}

// String is a text literal.
type String string

// Int is an integer literal.
type Int int64

// Bool is a boolean literal.
type Bool bool

func (String) valueNode() {}
func (Int) valueNode()    {}
func (Bool) valueNode()   {}

// Strings converts Go strings to Values, preserving order.
func Strings(values ...string) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = String(v)
	}
	return out
}
