// Command kycctl compiles, runs and formats KYC case DSL files from the
// command line and offers an interactive REPL.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"kycdsl/internal/dsl"
	"kycdsl/internal/dsl/parser"
	jwttoken "kycdsl/internal/jwt_token"
	"kycdsl/internal/platform/config"
)

const (
	historyFile = ".kycctl_history"
	promptMain  = "kyc> "
	promptCont  = "...> "
)

type command struct {
	usage string
	run   func(args []string) int
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"compile": {"compile [file]          print the JSON plan", cmdCompile},
		"exec":    {"exec [planfile]         execute a JSON plan", cmdExec},
		"run":     {"run [file]              compile and execute", cmdRun},
		"parse":   {"parse [file]            print the projected case as JSON", cmdParse},
		"fmt":     {"fmt [-check] [file]     rewrite a case in canonical form", cmdFmt},
		"grammar": {"grammar                 print the DSL grammar", cmdGrammar},
		"repl":    {"repl                    interactive compile-and-run loop", cmdRepl},
		"token":   {"token [-sub s] [-ttl d] issue an access token for the case API", cmdToken},
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	os.Exit(cmd.run(os.Args[2:]))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kycctl <command> [arguments]")
	fmt.Fprintln(os.Stderr)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

// readInput reads the named file, or stdin when no file or "-" is given.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(args[0])
	return string(b), err
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "error:", err)
	return 1
}

func cmdCompile(args []string) int {
	src, err := readInput(args)
	if err != nil {
		return fail(err)
	}
	plan, err := dsl.CompileDSL(src)
	if err != nil {
		return fail(err)
	}
	fmt.Println(plan)
	return 0
}

func cmdExec(args []string) int {
	plan, err := readInput(args)
	if err != nil {
		return fail(err)
	}
	report, err := dsl.ExecutePlan(plan)
	if err != nil {
		return fail(err)
	}
	fmt.Println(report)
	return 0
}

func cmdRun(args []string) int {
	src, err := readInput(args)
	if err != nil {
		return fail(err)
	}
	report, err := compileAndRun(src)
	if err != nil {
		return fail(err)
	}
	fmt.Println(report)
	return 0
}

func compileAndRun(src string) (string, error) {
	plan, err := dsl.CompileDSL(src)
	if err != nil {
		return "", err
	}
	return dsl.ExecutePlan(plan)
}

func cmdParse(args []string) int {
	src, err := readInput(args)
	if err != nil {
		return fail(err)
	}
	expr, err := dsl.Parse(src)
	if err != nil {
		return fail(err)
	}
	out, err := json.MarshalIndent(dsl.ProjectCase(expr), "", "  ")
	if err != nil {
		return fail(err)
	}
	fmt.Println(string(out))
	return 0
}

func cmdFmt(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	check := fs.Bool("check", false, "exit 1 if the input is not in canonical form")
	write := fs.Bool("w", false, "write the result back to the file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	src, err := readInput(fs.Args())
	if err != nil {
		return fail(err)
	}
	expr, err := dsl.Parse(src)
	if err != nil {
		return fail(err)
	}
	formatted := dsl.SerializeCase(dsl.ProjectCase(expr))

	switch {
	case *check:
		if strings.TrimSpace(src) != formatted {
			fmt.Fprintln(os.Stderr, "input is not in canonical form")
			return 1
		}
		return 0
	case *write && fs.NArg() > 0 && fs.Arg(0) != "-":
		if err := os.WriteFile(fs.Arg(0), []byte(formatted+"\n"), 0o644); err != nil {
			return fail(err)
		}
		return 0
	default:
		fmt.Println(formatted)
		return 0
	}
}

func cmdGrammar(_ []string) int {
	fmt.Print(dsl.Grammar())
	return 0
}

func cmdToken(args []string) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	cfg := config.FromEnv()
	subject := fs.String("sub", "analyst", "token subject recorded as the amendment actor")
	scope := fs.String("scope", "cases", "token scope")
	ttl := fs.Duration("ttl", cfg.JWT.TokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	svc := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	token, err := svc.GenerateAccessToken(*subject, *scope, *ttl)
	if err != nil {
		return fail(err)
	}
	fmt.Println(token)
	return 0
}

func cmdRepl(_ []string) int {
	fmt.Printf("KYC DSL %s. Enter a kyc-case form; :plan toggles plan output, :quit exits.\n", dsl.GrammarVersion)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	showPlan := false
	for {
		src, ok := readForm(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		src = strings.TrimSpace(src)
		switch src {
		case "":
			continue
		case ":quit", ":q":
			return 0
		case ":plan":
			showPlan = !showPlan
			fmt.Printf("plan output %s\n", map[bool]string{true: "on", false: "off"}[showPlan])
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		plan, err := dsl.CompileDSL(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		if showPlan {
			fmt.Println(plan)
		}
		report, err := dsl.ExecutePlan(plan)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println(report)
	}
}

// prompter is the part of *liner.State the REPL reads through.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// readForm keeps prompting until the accumulated lines parse or fail for a
// reason other than running out of input.
func readForm(ln prompter) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if trimmed := strings.TrimSpace(src); trimmed == "" || strings.HasPrefix(trimmed, ":") {
			return src, true
		}
		if _, err := parser.Parse(src); parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
