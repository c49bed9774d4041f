// Package cli implements the quill command: check runs the analyzer over a
// project once, watch re-runs it on every source change.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/modules"
	"github.com/quill-lang/quill/internal/presenter"
)

func Run(args []string) int {
	if len(args) == 0 {
		usage(os.Stderr)
		return 2
	}
	switch args[0] {
	case "check":
		return runCheck(args[1:])
	case "watch":
		return runWatch(args[1:])
	case "help", "-help", "--help":
		usage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage(os.Stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  quill check [-tolerant] [dir]   type-check the project once")
	fmt.Fprintln(w, "  quill watch [-tolerant] [dir]   re-check on every source change")
}

// checkOpts are the flags shared by check and watch.
type checkOpts struct {
	root     string
	tolerant bool
}

func parseCheckArgs(args []string) (checkOpts, error) {
	opts := checkOpts{root: "."}
	for _, arg := range args {
		switch arg {
		case "-tolerant", "--tolerant":
			opts.tolerant = true
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return opts, fmt.Errorf("unknown flag %q", arg)
			}
			opts.root = arg
		}
	}
	return opts, nil
}

func runCheck(args []string) int {
	opts, err := parseCheckArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	checker, err := modules.NewChecker(opts.root, opts.tolerant)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer checker.Close()

	p := newPrinter(os.Stdout)
	ok := runOnce(checker, p)
	if !ok {
		return 1
	}
	return 0
}

// runOnce checks the whole project and prints the outcome. Returns true
// when every module is clean.
func runOnce(checker *modules.Checker, p *printer) bool {
	results, err := checker.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}

	clean := true
	var errCount, warnCount, cached int
	for _, res := range results {
		if res.Cached {
			cached++
			continue
		}
		if res.Fatal != nil {
			clean = false
			errCount++
			p.fatal(res)
			continue
		}
		for _, note := range res.Report.Notes {
			p.note(res, note)
			if note.Warning {
				warnCount++
			} else {
				errCount++
				clean = false
			}
		}
	}

	p.summary(len(results), cached, errCount, warnCount)
	return clean
}

// formatter is implemented by every fatal error that can render itself
// against the source text.
type formatter interface {
	Format(source string) string
}

// printer writes check output, with ANSI color when stdout is a terminal.
type printer struct {
	out   io.Writer
	color bool
}

func newPrinter(out *os.File) *printer {
	return &printer{
		out:   out,
		color: isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()),
	}
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
	ansiCyan   = "\x1b[36m"
	ansiReset  = "\x1b[0m"
)

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *printer) fatal(res *modules.ModuleResult) {
	header := p.paint(ansiCyan, res.Module.Name)
	if f, ok := res.Fatal.(formatter); ok {
		fmt.Fprintf(p.out, "%s: %s\n", header, p.paint(ansiRed, f.Format(res.Source)))
		return
	}
	fmt.Fprintf(p.out, "%s: %s\n", header, p.paint(ansiRed, res.Fatal.Error()))
}

func (p *printer) note(res *modules.ModuleResult, n presenter.Note) {
	line, col := diagnostics.LineCol(res.Source, n.Span.Start)
	color, label := ansiRed, "error"
	if n.Warning {
		color, label = ansiYellow, "warning"
	}
	fmt.Fprintf(p.out, "%s:%d:%d: %s: %s\n",
		p.paint(ansiCyan, res.Module.Name), line, col, p.paint(color, label), n.Message)
}

func (p *printer) summary(total, cached, errs, warns int) {
	status := p.paint(ansiGreen, "ok")
	if errs > 0 {
		status = p.paint(ansiRed, fmt.Sprintf("%d error(s)", errs))
	}
	extra := ""
	if warns > 0 {
		extra = p.paint(ansiYellow, fmt.Sprintf(", %d warning(s)", warns))
	}
	fmt.Fprintf(p.out, "%d module(s), %d cached: %s%s\n", total, cached, status, extra)
}
