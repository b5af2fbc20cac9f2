// Copyright © 2024 The cstlint authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/luthersystems/cstlint/config"
	"github.com/luthersystems/cstlint/diagnostic"
	"github.com/luthersystems/cstlint/docs"
	"github.com/luthersystems/cstlint/lint"
	"github.com/luthersystems/cstlint/parser"
	"github.com/luthersystems/cstlint/profile"
)

// Version is reported by --version and recorded in profiles. It is set at
// link time.
var Version = "dev"

// ErrPerfRemoved is returned for the retired --perf flag.
var ErrPerfRemoved = errors.New("--perf is no longer supported; consider --xhprof")

// ExitError carries a process exit status out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

type rootFlags struct {
	mode    string
	verbose int
	xhprof  bool
	perf    bool
	color   string
	parser  string
	noCache bool
	list    bool
}

// RootCommand returns the cstlint command.
func RootCommand(opts ...Option) *cobra.Command {
	cfg := &cmdConfig{}
	for _, o := range opts {
		o(cfg)
	}
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "cstlint [flags] [PATH...]",
		Short: "Lint Hack source files",
		Long: `Lint Hack source files using the full-fidelity syntax tree produced by
hh_parse.

Each PATH is a file or a directory; directories are searched for .hack, .hh
and .php files. With no PATH, the roots listed in the nearest cstlint.json
are linted.

Exit codes:
  0  No findings
  1  The run could not complete (bad flags, bad configuration, missing files)
  2  One or more findings were reported

` + docs.ConfigGuide,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, cfg, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.mode, "mode", "m", modePlain, `Output mode: "plain" or "json".`)
	f.CountVarP(&flags.verbose, "verbose", "v", "Report progress on stderr; repeat for rule names.")
	f.BoolVar(&flags.xhprof, "xhprof", false, "Write a trace of files and rules to stderr.")
	f.BoolVar(&flags.perf, "perf", false, "Removed; use --xhprof.")
	_ = f.MarkHidden("perf")
	f.StringVar(&flags.color, "color", "auto", `Control colored output: "auto", "always", or "never".`)
	f.StringVar(&flags.parser, "parser", parser.DefaultBinary, "Parser binary producing the full-fidelity JSON syntax tree.")
	f.BoolVar(&flags.noCache, "no-cache", false, "Do not reuse cached parse results.")
	f.BoolVar(&flags.list, "list", false, "List the available rules and exit.")
	return cmd
}

func runLint(cmd *cobra.Command, cfg *cmdConfig, flags *rootFlags, args []string) error {
	if cmd.Flags().Changed("perf") {
		return &ExitError{Code: lint.ExitFatal, Err: ErrPerfRemoved}
	}
	reg := cfg.resolveRegistry()
	if flags.list {
		fmt.Fprint(cmd.OutOrStdout(), reg.RuleDoc())
		return nil
	}
	color, err := diagnostic.ParseColorMode(flags.color)
	if err != nil {
		return &ExitError{Code: lint.ExitFatal, Err: err}
	}
	handler, err := newHandler(flags.mode, color, cmd.OutOrStdout())
	if err != nil {
		return &ExitError{Code: lint.ExitFatal, Err: err}
	}
	log := newLogger(cmd.ErrOrStderr(), flags.verbose)

	session := profile.Disabled()
	if flags.xhprof {
		session, err = profile.Start(cmd.ErrOrStderr(), Version)
		if err != nil {
			return &ExitError{Code: lint.ExitFatal, Err: err}
		}
	}
	defer func() {
		if err := session.Stop(context.Background()); err != nil {
			log.WithError(err).Warn("failed to write profile")
		}
	}()

	runner := &lint.Runner{
		Registry: reg,
		Resolver: config.NewResolver(reg),
		Parser:   newParser(cfg, flags, log),
		Handler:  handler,
		Log:      log,
		Tracer:   session.Tracer(),
		Dir:      cfg.dir,
	}
	status, err := runner.Run(cmd.Context(), args)
	if err != nil || status != lint.ExitClean {
		return &ExitError{Code: status, Err: err}
	}
	return nil
}

func newParser(cfg *cmdConfig, flags *rootFlags, log logrus.FieldLogger) parser.Parser {
	if cfg.parser != nil {
		return cfg.parser
	}
	p := parser.NewCommand(flags.parser)
	if flags.noCache {
		return p
	}
	cache, err := parser.OpenCache("cstlint", p)
	if err != nil {
		log.WithError(err).Info("parse cache disabled")
		return p
	}
	return cache
}

// Run executes cmd with args and returns the process exit status. Errors
// are printed to the command's error stream.
func Run(ctx context.Context, cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return exitStatus(cmd.ErrOrStderr(), err)
}

func exitStatus(w io.Writer, err error) int {
	if err == nil {
		return lint.ExitClean
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			fmt.Fprintf(w, "cstlint: %v\n", exit.Err)
		}
		return exit.Code
	}
	// Flag and argument errors from cobra.
	fmt.Fprintf(w, "cstlint: %v\n", err)
	return lint.ExitFatal
}

// Execute runs cstlint with the process arguments and returns the exit
// status. It is called by main.main.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return Run(ctx, RootCommand(), os.Args[1:])
}
