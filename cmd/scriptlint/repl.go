package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/dekarrin/scriptlint/internal/input"
	"github.com/dekarrin/scriptlint/internal/lint"
	"github.com/dekarrin/scriptlint/internal/render"
	"github.com/dekarrin/scriptlint/internal/sema"
	"github.com/dekarrin/scriptlint/internal/source"
)

// runRepl starts an interactive session. Each entered line is linted as a
// one-line program whose top-level scope is chained onto the scopes of every
// previously entered line, so declarations persist across lines. The REPL
// never evaluates anything; it only reports what the linter finds.
func runRepl() error {
	var reader input.LineReader
	interactive := isatty.IsTerminal(os.Stdin.Fd())
	if interactive {
		irdr, err := input.NewInteractiveReader("lint> ")
		if err != nil {
			return fmt.Errorf("initialize readline: %w", err)
		}
		reader = irdr
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	defer reader.Close()

	if interactive {
		fmt.Println("scriptlint REPL. Type a line to lint it, or :help for commands.")
	}

	var builtin *sema.Scope
	lineNum := 0

	for {
		line, err := reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		if strings.HasPrefix(line, ":") {
			quit, newBuiltin := replCommand(line, builtin)
			builtin = newBuiltin
			if quit {
				return nil
			}
			continue
		}

		lineNum++
		src := source.NewStringSource(fmt.Sprintf("<repl:%d>", lineNum), line)
		res := lint.Run(src, builtin)

		sink := render.Fancy(os.Stdout, src, interactive)
		for _, d := range res.Diags {
			sink(d)
		}

		// Chain the line's scope in even when it had diagnostics; a
		// recovered declaration is still a declaration, matching the
		// file-mode behavior for e.g. an uninitialized const.
		builtin = res.Scope
	}
}

// replCommand handles one `:`-prefixed REPL command. It returns whether the
// REPL should exit and the (possibly replaced) builtin scope chain.
func replCommand(line string, builtin *sema.Scope) (quit bool, newBuiltin *sema.Scope) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case ":quit", ":q":
		return true, builtin
	case ":help":
		fmt.Print(render.ReplHelpTable())
		return false, builtin
	case ":reset":
		fmt.Println("Cleared all declarations.")
		return false, nil
	case ":load":
		if rest == "" {
			fmt.Fprintln(os.Stderr, "Need a file to load, like ':load prelude.ms'.")
			return false, builtin
		}
		src, err := source.NewFileSource(rest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			return false, builtin
		}
		res := lint.Run(src, builtin)
		sink := render.Fancy(os.Stdout, src, isatty.IsTerminal(os.Stdout.Fd()))
		for _, d := range res.Diags {
			sink(d)
		}
		fmt.Printf("Loaded %s.\n", rest)
		return false, res.Scope
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q; do :help for help.\n", cmd)
		return false, builtin
	}
}
