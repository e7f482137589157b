package executor

import "fmt"

// Context is the mutable state of one execution. It is created empty for
// each Execute call and never shared between calls.
type Context struct {
	CurrentCase string
	// Variables is a flat last-write-wins map.
	Variables map[string]string
	Log       []string

	caseSet bool
}

// NewContext returns an empty execution context.
func NewContext() *Context {
	return &Context{Variables: map[string]string{}, Log: []string{}}
}

// SetCase records the case being processed.
func (c *Context) SetCase(name string) {
	c.CurrentCase = name
	c.caseSet = true
}

// Case returns the current case and whether one has been initialized.
func (c *Context) Case() (string, bool) {
	return c.CurrentCase, c.caseSet
}

// Set stores a variable, replacing any previous value.
func (c *Context) Set(key, value string) {
	c.Variables[key] = value
}

// Logf appends a formatted entry to the execution log.
func (c *Context) Logf(format string, args ...any) {
	c.Log = append(c.Log, fmt.Sprintf(format, args...))
}
