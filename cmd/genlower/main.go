package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xyproto/env/v2"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/interp"
	"github.com/wippyai/genlower/internal/samples"
	"github.com/wippyai/genlower/lower"
	"github.com/wippyai/genlower/printer"
)

type options struct {
	sample  string
	only    []string
	steps   int
	list    bool
	dump    bool
	noCPS   bool
	verbose bool
	color   bool
}

func main() {
	var (
		sample      = flag.String("sample", env.Str("GENLOWER_SAMPLE", "two-yields"), "Sample program to run")
		steps       = flag.Int("steps", env.Int("GENLOWER_STEPS", 20), "Maximum number of generator resumptions")
		list        = flag.Bool("list", false, "List samples and exit")
		dump        = flag.Bool("dump", false, "Print the program before and after lowering")
		noCPS       = flag.Bool("no-cps", false, "Skip the CPS conversion of expressions")
		only        = flag.String("only", env.Str("GENLOWER_ONLY"), "Comma-separated globs of extra plain functions to lower")
		verbose     = flag.Bool("v", env.Bool("GENLOWER_VERBOSE"), "Log every pass step")
		noColor     = flag.Bool("no-color", env.Bool("GENLOWER_NO_COLOR"), "Disable styled output")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	opts := options{
		sample:  *sample,
		only:    splitList(*only),
		steps:   *steps,
		list:    *list,
		dump:    *dump,
		noCPS:   *noCPS,
		verbose: *verbose,
		color:   !*noColor && term.IsTerminal(int(os.Stdout.Fd())),
	}

	log := zap.NewNop()
	if opts.verbose && !*interactive {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log = l
	}
	defer log.Sync() //nolint:errcheck
	lower.SetLogger(log)

	if *interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Stdout, opts, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// styles renders plain text when color is off.
type styles struct {
	title, name, value, err, dim lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{title: plain, name: plain, value: plain, err: plain, dim: plain}
	}
	return styles{
		title: titleStyle,
		name:  funcStyle,
		value: resultStyle,
		err:   errorStyle,
		dim:   helpStyle,
	}
}

// prepared is a sample that has been built and lowered.
type prepared struct {
	built  *samples.Built
	stats  []*lower.Stats
	before string
	after  string
}

func prepare(name string, opts options, log *zap.Logger) (*prepared, error) {
	s, ok := samples.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown sample %q (try -list)", name)
	}
	b := s.Build()
	before := printer.Program(b.Program)

	p := lower.New(b.Program, lower.Config{
		Only: lower.NewCompositeFunctionMatcher(
			lower.NewFunctionNameMatcher(b.Only),
			lower.NewFunctionPatternMatcher(opts.only),
		),
		SkipExpressions: opts.noCPS,
		Verify:          true,
		Logger:          log,
	})
	if err := p.Setup(); err != nil {
		return nil, err
	}
	stats, err := p.TransformProgram()
	if err != nil {
		return nil, err
	}
	return &prepared{built: b, stats: stats, before: before, after: printer.Program(b.Program)}, nil
}

func run(w io.Writer, opts options, log *zap.Logger) error {
	st := newStyles(opts.color)

	if opts.list {
		for _, name := range samples.Names() {
			s, _ := samples.Get(name)
			fmt.Fprintf(w, "  %-12s %s\n", st.name.Render(name), s.Description)
		}
		return nil
	}

	pr, err := prepare(opts.sample, opts, log)
	if err != nil {
		return err
	}
	b := pr.built

	if opts.dump {
		fmt.Fprintln(w, st.title.Render("Source"))
		fmt.Fprintln(w, pr.before)
		fmt.Fprintln(w, st.title.Render("Lowered"))
		fmt.Fprintln(w, pr.after)
	}

	fmt.Fprintln(w, st.title.Render("Transformed"))
	for _, s := range pr.stats {
		kind := "function"
		if s.Generator {
			kind = "generator"
		}
		fmt.Fprintf(w, "  %s %s: %d fragments, %d continuations, %d yields, %d dropped\n",
			kind, st.name.Render(s.Func), s.Fragments, s.Continuations, s.Yields, s.Dropped)
		if len(s.Unreachable) > 0 {
			fmt.Fprintf(w, "    %s\n", st.dim.Render("unreachable: "+strings.Join(s.Unreachable, ", ")))
		}
	}
	fmt.Fprintln(w)

	var trace []string
	in := interp.New(interp.Config{Program: b.Program, Output: w, Logger: log})
	b.Bind(in, &trace)

	fmt.Fprintf(w, "Calling %s%s\n", st.name.Render(entryName(b)), formatArgs(b.Args))
	result, err := in.CallFunc(b.Entry, b.Args...)
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}

	if generatorOf(b.Program, b.Entry) {
		for i := 0; i < opts.steps; i++ {
			v, done, err := in.Resume(result)
			if err != nil {
				fmt.Fprintln(w, st.err.Render(fmt.Sprintf("  next() failed: %v", err)))
				break
			}
			if done {
				fmt.Fprintln(w, st.dim.Render("  next() -> done"))
				break
			}
			fmt.Fprintf(w, "  next() -> %s\n", st.value.Render(interp.Format(v)))
		}
	} else {
		fmt.Fprintf(w, "Result: %s\n", st.value.Render(interp.Format(result)))
	}

	if len(trace) > 0 {
		fmt.Fprintf(w, "\n--- trace ---\n%s\n", strings.Join(trace, "\n"))
	}
	return nil
}

func entryName(b *samples.Built) string {
	if fd := b.Program.Func(b.Entry); fd != nil {
		return fd.DisplayName()
	}
	return fmt.Sprintf("#%d", b.Entry)
}

func formatArgs(args []interp.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = interp.Format(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// generatorOf reports whether id names a generator function.
func generatorOf(prog *ast.Program, id ast.FuncID) bool {
	fd := prog.Func(id)
	return fd != nil && fd.Generator
}
