package ast

import "strings"

// Render returns the canonical text of e: an atom renders as its value and a
// call as `(name a b ...)` with single spaces between siblings, or `(name)`
// when it has no arguments. Atom values are written verbatim, so a quoted
// literal containing spaces renders without its quotes.
func Render(e Expr) string {
	var b strings.Builder
	render(&b, e)
	return b.String()
}

func render(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case Atom:
		b.WriteString(n.Value)
	case Call:
		b.WriteByte('(')
		b.WriteString(n.Name)
		for _, arg := range n.Args {
			b.WriteByte(' ')
			render(b, arg)
		}
		b.WriteByte(')')
	}
}
