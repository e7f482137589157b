package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycdsl/internal/dsl/ast"
	"kycdsl/internal/dsl/parser"
)

func compileSource(t *testing.T, src string) []Instruction {
	t.Helper()
	expr, err := parser.Parse(src)
	require.NoError(t, err)
	plan, err := Compile(expr)
	require.NoError(t, err)
	return plan
}

func TestCompileSimpleCase(t *testing.T) {
	plan := compileSource(t, "(kyc-case TEST-CASE)")

	assert.Equal(t, []Instruction{
		{Name: InstrInitCase, Args: []string{"TEST-CASE"}},
		{Name: InstrFinalizeCase, Args: []string{"TEST-CASE"}},
	}, plan)
}

func TestCompileCaseBody(t *testing.T) {
	plan := compileSource(t, `(kyc-case TEST-CASE (nature "Corporate") (purpose "Investment"))`)

	require.Len(t, plan, 4)
	assert.Equal(t, Instruction{Name: "init-case", Args: []string{"TEST-CASE"}}, plan[0])
	assert.Equal(t, Instruction{Name: "nature", Args: []string{"Corporate"}}, plan[1])
	assert.Equal(t, Instruction{Name: "purpose", Args: []string{"Investment"}}, plan[2])
	assert.Equal(t, Instruction{Name: "finalize-case", Args: []string{"TEST-CASE"}}, plan[3])
}

func TestCompileBracketsEveryBody(t *testing.T) {
	bodies := []string{
		"",
		"(policy AMLD5)",
		"(policy AMLD5) (function DISCOVER-POLICIES) (obligation W8BEN)",
		`(nature-purpose (nature "Corporate") (purpose "Investment")) (ownership-structure (owner A 10%)) (kyc-token "pending")`,
		// bare atoms in the body compile to nothing
		"loose-atom (policy AMLD5) another",
	}
	wantBody := []int{0, 1, 3, 3, 1}

	for i, body := range bodies {
		plan := compileSource(t, "(kyc-case CASE-"+string(rune('A'+i))+" "+body+")")
		require.Len(t, plan, wantBody[i]+2, "body %q", body)

		caseID := "CASE-" + string(rune('A'+i))
		assert.Equal(t, Instruction{Name: InstrInitCase, Args: []string{caseID}}, plan[0])
		assert.Equal(t, Instruction{Name: InstrFinalizeCase, Args: []string{caseID}}, plan[len(plan)-1])
	}
}

func TestCompileGenericFormDoesNotRecurse(t *testing.T) {
	plan := compileSource(t, "(foo (bar 1))")

	assert.Equal(t, []Instruction{{Name: "foo", Args: []string{"(bar 1)"}}}, plan)
}

func TestCompileBlockFormsCaptureText(t *testing.T) {
	plan := compileSource(t, `(kyc-case X
		(ownership-structure
			(entity ACME)
			(owner ACME-Corp 45.5%)
			(controller Jane "Director")))`)

	require.Len(t, plan, 3)
	assert.Equal(t, "ownership-structure", plan[1].Name)
	assert.Equal(t, []string{"(entity ACME)", "(owner ACME-Corp 45.5%)", "(controller Jane Director)"}, plan[1].Args)
}

func TestCompileNestedCases(t *testing.T) {
	plan := compileSource(t, "(kyc-case OUTER (kyc-case INNER (policy P)))")

	names := make([]string, len(plan))
	for i, in := range plan {
		names[i] = in.Name + ":" + in.Args[0]
	}
	assert.Equal(t, []string{
		"init-case:OUTER",
		"init-case:INNER",
		"policy:P",
		"finalize-case:INNER",
		"finalize-case:OUTER",
	}, names)
}

func TestCompileTopLevelAtom(t *testing.T) {
	plan, err := Compile(ast.Atom{Value: "kyc-case"})
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestCompileEmptyForm(t *testing.T) {
	plan := compileSource(t, "(kyc-case X (data-dictionary))")
	require.Len(t, plan, 3)
	assert.Equal(t, Instruction{Name: "data-dictionary", Args: []string{}}, plan[1])
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
		msg  string
	}{
		{
			name: "kyc-case without arguments",
			expr: ast.Call{Name: "kyc-case"},
			msg:  "kyc-case requires at least a name",
		},
		{
			name: "kyc-case with a form as name",
			expr: ast.Call{Name: "kyc-case", Args: []ast.Expr{ast.Call{Name: "nature"}}},
			msg:  "kyc-case name must be an atom",
		},
		{
			name: "invalid nested case",
			expr: ast.Call{Name: "kyc-case", Args: []ast.Expr{ast.Atom{Value: "X"}, ast.Call{Name: "kyc-case"}}},
			msg:  "kyc-case requires at least a name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Compile(tt.expr)
			require.Error(t, err)
			assert.Nil(t, plan)

			var ce *CompileError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.msg, ce.Msg)
			assert.Equal(t, "kyc-case", ce.Form)
		})
	}
}

func TestClassifyForm(t *testing.T) {
	assert.Equal(t, FormKYCCase, ClassifyForm("kyc-case"))
	assert.Equal(t, FormNaturePurpose, ClassifyForm("nature-purpose"))
	assert.Equal(t, FormOwnershipStructure, ClassifyForm("ownership-structure"))
	assert.Equal(t, FormDataDictionary, ClassifyForm("data-dictionary"))
	assert.Equal(t, FormDocumentRequirements, ClassifyForm("document-requirements"))
	assert.Equal(t, FormGeneric, ClassifyForm("owner"))
	assert.Equal(t, FormGeneric, ClassifyForm("something-new"))
	assert.Equal(t, "generic", FormGeneric.String())
}
