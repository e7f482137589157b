package projector

import (
	"strconv"
	"strings"

	"kycdsl/internal/dsl/parser"
)

// Serialize renders a ParsedCase as kyc-case DSL text. Field order is fixed,
// so the output is structurally equivalent to the source it was projected
// from but not byte-identical.
func Serialize(pc ParsedCase) string {
	var b strings.Builder
	b.WriteString("(kyc-case ")
	b.WriteString(bare(pc.Name))
	b.WriteString("\n")

	if pc.Nature != "" || pc.Purpose != "" {
		b.WriteString("  (nature-purpose\n")
		if pc.Nature != "" {
			line(&b, 4, "nature", quoted(pc.Nature))
		}
		if pc.Purpose != "" {
			line(&b, 4, "purpose", quoted(pc.Purpose))
		}
		b.WriteString("  )\n")
	}

	optional(&b, "client-business-unit", pc.ClientBusinessUnit)
	optional(&b, "policy", pc.Policy)
	optional(&b, "function", pc.Function)
	optional(&b, "obligation", pc.Obligation)

	if own := pc.Ownership; own != nil {
		b.WriteString("  (ownership-structure\n")
		if own.EntityName != "" {
			line(&b, 4, "entity", bare(own.EntityName))
		}
		for _, o := range own.Owners {
			line(&b, 4, "owner", bare(o.Name), percent(o.Percentage))
		}
		for _, o := range own.BeneficialOwners {
			line(&b, 4, "beneficial-owner", bare(o.Name), percent(o.Percentage))
		}
		for _, c := range own.Controllers {
			line(&b, 4, "controller", bare(c.Name), quoted(c.Role))
		}
		b.WriteString("  )\n")
	}

	if pc.KYCToken != "" {
		line(&b, 2, "kyc-token", quoted(pc.KYCToken))
	}

	b.WriteString(")")
	return b.String()
}

func optional(b *strings.Builder, name, value string) {
	if value != "" {
		line(b, 2, name, bare(value))
	}
}

func line(b *strings.Builder, indent int, name string, args ...string) {
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString("(")
	b.WriteString(name)
	for _, a := range args {
		b.WriteString(" ")
		b.WriteString(a)
	}
	b.WriteString(")\n")
}

// bare writes s as an atom, falling back to a quoted literal when s would not
// parse back as a single atom.
func bare(s string) string {
	if parser.IsBareAtom(s) {
		return s
	}
	return quoted(s)
}

// quoted wraps s in double quotes. The DSL has no escape sequence, so any
// embedded quote is dropped.
func quoted(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}

func percent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}
