/*
Scriptlint checks a script source file and prints the diagnostics it finds.

It reads the given source file, runs the lexer, parser, and semantic analyzer
over it, and writes every diagnostic produced to stdout. It never generates or
executes code; its exit status is 0 whenever the run completes, regardless of
how many diagnostics were reported.

Usage:

	scriptlint [flags] <source-file>
	scriptlint repl

The flags are:

	-v, --version
		Give the current version of scriptlint and then exit.

	-f, --format FORMAT
		Render diagnostics in the given format, either "fancy" (colorized,
		with source context) or "tool" (one stable machine-parsable line per
		diagnostic). Defaults to fancy when stdout is a terminal and tool
		otherwise.

	-b, --builtins FILE
		Lint FILE first as a prelude defining built-in names; the main file's
		top-level scope resolves against the prelude's scope as a parent.

	--config FILE
		Use the given TOML config file instead of looking for a
		.scriptlint.toml next to the source file.

The "repl" subcommand starts an interactive session that lints one line at a
time, keeping declarations from earlier lines visible to later ones. Type
":help" in a session for its commands.
*/
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/dekarrin/scriptlint/internal/clierr"
	"github.com/dekarrin/scriptlint/internal/config"
	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/lint"
	"github.com/dekarrin/scriptlint/internal/render"
	"github.com/dekarrin/scriptlint/internal/sema"
	"github.com/dekarrin/scriptlint/internal/source"
	"github.com/dekarrin/scriptlint/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates an unsuccessful program execution due to a
	// problem with the supplied arguments or config.
	ExitUsageError

	// ExitIOError indicates an unsuccessful program execution due to an
	// unreadable input file.
	ExitIOError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	flagFormat  *string = pflag.StringP("format", "f", "", "Diagnostic format, 'fancy' or 'tool'")
	flagPrelude *string = pflag.StringP("builtins", "b", "", "Prelude file defining built-in names")
	flagConfig  *string = pflag.String("config", "", "TOML config file to use")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("scriptlint v%s\n", version.Current)
		return
	}

	args := pflag.Args()

	if len(args) == 1 && args[0] == "repl" {
		if err := runRepl(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", clierr.OperatorMessageOf(err))
			returnCode = ExitUsageError
		}
		return
	}

	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Need exactly one source file\nDo -h for help.\n")
		returnCode = ExitUsageError
		return
	}
	sourceFile := args[0]

	conf, err := loadConfig(sourceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", clierr.OperatorMessageOf(err))
		returnCode = ExitUsageError
		return
	}

	format := conf.Format
	if *flagFormat != "" {
		format = *flagFormat
	}
	switch format {
	case "":
		format = "tool"
		if isatty.IsTerminal(os.Stdout.Fd()) {
			format = "fancy"
		}
	case "tool", "fancy":
	default:
		fmt.Fprintf(os.Stderr, "Format must be 'fancy' or 'tool', not %q\nDo -h for help.\n", format)
		returnCode = ExitUsageError
		return
	}

	preludeFile := conf.Prelude
	if *flagPrelude != "" {
		preludeFile = *flagPrelude
	}

	var builtin *sema.Scope
	if preludeFile != "" {
		preludeSrc, err := source.NewFileSource(preludeFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
		preludeScope, preludeDiags := lint.LoadPrelude(preludeSrc)
		emitAll(preludeDiags, sinkFor(format, preludeSrc, conf))
		builtin = preludeScope
	}

	src, err := source.NewFileSource(sourceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitIOError
		return
	}

	res := lint.Run(src, builtin)
	emitAll(res.Diags, sinkFor(format, src, conf))
}

// loadConfig loads the explicit --config file if one was given, or else
// searches next to the source file. An explicitly named config that fails to
// load is an error; a merely absent .scriptlint.toml is not.
func loadConfig(sourceFile string) (config.Config, error) {
	if *flagConfig != "" {
		conf, err := config.Load(*flagConfig)
		if err != nil {
			return config.Config{}, clierr.Wrap("could not load config", err)
		}
		return conf, nil
	}
	conf, err := config.LoadNear(sourceFile)
	if err != nil {
		return config.Config{}, clierr.Wrap("could not load config", err)
	}
	return conf, nil
}

// sinkFor builds the diagnostic sink for the selected format over src,
// applying the config's info-suppression and color policy.
func sinkFor(format string, src source.Source, conf config.Config) diag.Sink {
	var sink diag.Sink
	if format == "tool" {
		sink = render.Tool(os.Stdout)
	} else {
		color := false
		switch conf.Color {
		case config.ColorAlways:
			color = true
		case config.ColorNever:
			color = false
		default:
			color = isatty.IsTerminal(os.Stdout.Fd())
		}
		sink = render.Fancy(os.Stdout, src, color)
	}
	if conf.SuppressInfo {
		sink = render.DropInfo(sink)
	}
	return sink
}

func emitAll(diags []diag.Diag, sink diag.Sink) {
	for _, d := range diags {
		sink(d)
	}
}
