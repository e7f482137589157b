package compiler

import (
	"encoding/json"
	"fmt"
)

// Instruction is the flat unit handed from the compiler to the executor.
// It holds only strings so a plan survives any text interchange format.
type Instruction struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// EncodePlan serializes instructions as a JSON array of {name, args} records.
func EncodePlan(plan []Instruction) (string, error) {
	out := make([]Instruction, len(plan))
	for i, in := range plan {
		out[i] = in
		if out[i].Args == nil {
			out[i].Args = []string{}
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode plan: %w", err)
	}
	return string(b), nil
}

// DecodePlan parses a JSON plan produced by EncodePlan. Records missing args
// decode with an empty argument list.
func DecodePlan(data string) ([]Instruction, error) {
	var plan []Instruction
	if err := json.Unmarshal([]byte(data), &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if plan == nil {
		return nil, fmt.Errorf("decode plan: expected a JSON array of instructions")
	}
	for i := range plan {
		if plan[i].Args == nil {
			plan[i].Args = []string{}
		}
	}
	return plan, nil
}
