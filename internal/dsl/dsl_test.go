package dsl

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycdsl/internal/dsl/compiler"
	"kycdsl/internal/dsl/executor"
	"kycdsl/internal/dsl/parser"
	"kycdsl/internal/dsl/projector"
	"kycdsl/pkg/testutil"
)

func TestCompileAndExecute(t *testing.T) {
	testutil.Given(t, "a bare case", func(t *testing.T) {
		plan, err := CompileDSL("(kyc-case TEST-CASE)")
		require.NoError(t, err)

		testutil.Then(t, "the plan brackets the case", func(t *testing.T) {
			var instrs []compiler.Instruction
			require.NoError(t, json.Unmarshal([]byte(plan), &instrs))
			assert.Equal(t, []compiler.Instruction{
				{Name: "init-case", Args: []string{"TEST-CASE"}},
				{Name: "finalize-case", Args: []string{"TEST-CASE"}},
			}, instrs)
		})

		testutil.Then(t, "the report confirms both steps", func(t *testing.T) {
			report, err := ExecutePlan(plan)
			require.NoError(t, err)
			assert.Contains(t, report, "✓ Case 'TEST-CASE' initialized")
			assert.Contains(t, report, "✓ Case 'TEST-CASE' finalized")
			assert.Contains(t, report, "Log:\nInitialized case: TEST-CASE\nFinalized case: TEST-CASE")
		})
	})

	testutil.Given(t, "a case with nature and purpose", func(t *testing.T) {
		instrs, err := Compile(`(kyc-case TEST-CASE (nature "Corporate") (purpose "Investment"))`)
		require.NoError(t, err)
		require.Len(t, instrs, 4)

		testutil.Then(t, "execution sets both variables", func(t *testing.T) {
			res, err := executor.ExecuteInstructions(instrs)
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"nature": "Corporate", "purpose": "Investment"}, res.Context.Variables)
		})
	})
}

func TestErrorKindsAreDistinct(t *testing.T) {
	t.Run("syntax error", func(t *testing.T) {
		_, err := CompileDSL("not ( balanced")
		var se *parser.SyntaxError
		assert.True(t, errors.As(err, &se))
		var ce *compiler.CompileError
		assert.False(t, errors.As(err, &ce))
	})

	t.Run("compile error", func(t *testing.T) {
		_, err := CompileDSL("(kyc-case)")
		var ce *compiler.CompileError
		assert.True(t, errors.As(err, &ce))
		var se *parser.SyntaxError
		assert.False(t, errors.As(err, &se))
	})

	t.Run("execution error", func(t *testing.T) {
		_, err := ExecutePlan("this is not json")
		var ee *executor.ExecutionError
		assert.True(t, errors.As(err, &ee))
	})
}

func TestProjectAndSerializeRoundTrip(t *testing.T) {
	expr, err := Parse(`(kyc-case ACME (policy AMLD5) (ownership-structure (owner A 60%) (owner B 40%)))`)
	require.NoError(t, err)

	pc := ProjectCase(expr)
	pc.KYCToken = "approved"

	text := SerializeCase(pc)
	again, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, pc, ProjectCase(again))

	_, err = CompileDSL(text)
	assert.NoError(t, err)
}

func TestGrammar(t *testing.T) {
	assert.Contains(t, Grammar(), "KYC-DSL Grammar (v"+GrammarVersion+")")
	assert.Equal(t, projector.UnknownCase, ProjectCase(nil).Name)
}
