// Package ast defines the expression tree produced by the KYC DSL parser.
//
// The tree has exactly two node kinds: an Atom for identifiers, bare tokens and
// quoted literals, and a Call for a parenthesized form. Nodes are never mutated
// after parsing.
package ast

// Expr is implemented by Atom and Call only.
type Expr interface {
	Kind() string
	exprNode() // sealed marker
}

// Atom is an identifier, bare token, or quoted string literal. Quoted literals
// are stored without their surrounding quotes.
type Atom struct {
	Value string
}

func (a Atom) Kind() string { return "Atom" }
func (a Atom) exprNode()    {}

// Call is a form `(name arg1 arg2 ...)`. Args may be empty.
type Call struct {
	Name string
	Args []Expr
}

func (c Call) Kind() string { return "Call" }
func (c Call) exprNode()    {}

// IsCall reports whether e is a Call with the given name.
func IsCall(e Expr, name string) bool {
	c, ok := e.(Call)
	return ok && c.Name == name
}

// AtomValue returns the value of e when it is an Atom.
func AtomValue(e Expr) (string, bool) {
	a, ok := e.(Atom)
	if !ok {
		return "", false
	}
	return a.Value, true
}
