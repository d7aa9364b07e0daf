package link

import "fmt"

// Definition declares that two linkables are related. A is the side declared first.
type Definition struct {
	A Side `json:"a"`
	B Side `json:"b"`
}

// Define declares a link between two endpoints. A pair of bare linkables
// yields a one-to-one link; List sides enable many-to-many navigation.
// Define performs no validation, that is left to Build.
func Define(a, b Endpoint) Definition {
	return Definition{A: endpointSide(a), B: endpointSide(b)}
}

func endpointSide(e Endpoint) Side {
	if e == nil {
		return Side{}
	}
	return e.side()
}

// CardinalityOf returns the cardinality declared for l, and false when l is not part of the link
func (d Definition) CardinalityOf(l Linkable) (Cardinality, bool) {
	switch l {
	case d.A.Linkable:
		return d.A.Cardinality(), true
	case d.B.Linkable:
		return d.B.Cardinality(), true
	}
	return "", false
}

// Pair returns the unordered pair key of the link
func (d Definition) Pair() Pair {
	a, b := d.A.Linkable, d.B.Linkable
	if b.String() < a.String() {
		a, b = b, a
	}
	return Pair{a, b}
}

// String renders the link as "company.contact[many] <-> tag.tag[many]"
func (d Definition) String() string {
	return fmt.Sprintf("%s[%s] <-> %s[%s]", d.A.Linkable, d.A.Cardinality(), d.B.Linkable, d.B.Cardinality())
}

// Pair is an unordered pair of linkables, stored in lexical order
type Pair [2]Linkable

func (p Pair) String() string {
	return p[0].String() + " <-> " + p[1].String()
}
