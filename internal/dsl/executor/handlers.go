package executor

import "fmt"

func initCase(ctx *Context, _ string, args []string) string {
	ctx.SetCase(args[0])
	ctx.Logf("Initialized case: %s", args[0])
	return fmt.Sprintf("✓ Case '%s' initialized", args[0])
}

func finalizeCase(ctx *Context, _ string, args []string) string {
	ctx.Logf("Finalized case: %s", args[0])
	return fmt.Sprintf("✓ Case '%s' finalized", args[0])
}

// setter stores the first argument under key.
func setter(key, missing, logFormat, resultFormat string) handler {
	return handler{
		minArgs: 1,
		missing: missing,
		run: func(ctx *Context, _ string, args []string) string {
			ctx.Set(key, args[0])
			ctx.Logf(logFormat, args[0])
			return fmt.Sprintf(resultFormat, args[0])
		},
	}
}

// pair logs a name together with a percentage or role. Arguments are kept
// verbatim; percentages are only interpreted by the case projector.
func pair(missing, logFormat, resultFormat string) handler {
	return handler{
		minArgs: 2,
		missing: missing,
		run: func(ctx *Context, _ string, args []string) string {
			ctx.Logf(logFormat, args[0], args[1])
			return fmt.Sprintf(resultFormat, args[0], args[1])
		},
	}
}

// section handles block forms whose contents were captured as text.
func section(logLine, resultFormat string) handler {
	return handler{
		run: func(ctx *Context, _ string, args []string) string {
			ctx.Logf("%s", logLine)
			return fmt.Sprintf(resultFormat, len(args))
		},
	}
}

func attribute(ctx *Context, _ string, args []string) string {
	ctx.Logf("Defined attribute: %s", args[0])
	return fmt.Sprintf("✓ Attribute: %s", args[0])
}

func generic(ctx *Context, name string, args []string) string {
	ctx.Logf("Executed generic instruction: %s", name)
	return fmt.Sprintf("✓ %s: %d args", name, len(args))
}
