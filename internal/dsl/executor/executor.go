// Package executor runs a compiled KYC DSL plan against a fresh execution
// context and produces a textual report.
//
// Instructions run strictly in order. The first failing instruction aborts
// the rest of the plan; state written by earlier instructions is kept.
package executor

import (
	"fmt"
	"strings"

	"kycdsl/internal/dsl/compiler"
)

// ExecutionError reports a plan that could not be decoded or an instruction
// whose handler rejected its arguments. Index is -1 for decode failures.
type ExecutionError struct {
	Index       int
	Instruction string
	Msg         string
	Err         error
}

func (e *ExecutionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("instruction %d (%s): %s", e.Index, e.Instruction, e.Msg)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Result holds the final context and the confirmation returned by each
// executed instruction.
type Result struct {
	Context *Context
	Results []string
}

// Report formats the confirmations and the log as one text block.
func (r *Result) Report() string {
	return fmt.Sprintf("Execution completed successfully.\n\nResults:\n%s\n\nLog:\n%s",
		strings.Join(r.Results, "\n"),
		strings.Join(r.Context.Log, "\n"),
	)
}

// Execute decodes a JSON plan and runs it.
func Execute(plan string) (*Result, error) {
	instructions, err := compiler.DecodePlan(plan)
	if err != nil {
		return nil, &ExecutionError{Index: -1, Msg: "invalid plan", Err: err}
	}
	return ExecuteInstructions(instructions)
}

// ExecuteInstructions runs an already decoded plan. On failure it returns the
// partial result alongside the error so callers can inspect what was applied.
func ExecuteInstructions(instructions []compiler.Instruction) (*Result, error) {
	res := &Result{Context: NewContext(), Results: make([]string, 0, len(instructions))}
	for i, in := range instructions {
		out, err := step(res.Context, i, in)
		if err != nil {
			return res, err
		}
		res.Results = append(res.Results, out)
	}
	return res, nil
}

func step(ctx *Context, index int, in compiler.Instruction) (string, error) {
	h := handlerFor(ResolveOp(in.Name))
	if len(in.Args) < h.minArgs {
		return "", &ExecutionError{Index: index, Instruction: in.Name, Msg: h.missing}
	}
	return h.run(ctx, in.Name, in.Args), nil
}
