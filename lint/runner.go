// Copyright © 2024 The cstlint authors

package lint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/luthersystems/cstlint/config"
	"github.com/luthersystems/cstlint/parser"
)

// Exit statuses returned by Runner.Run.
const (
	ExitClean    = 0
	ExitFatal    = 1
	ExitFindings = 2
)

var (
	// ErrNoTargets is returned when there are neither PATH arguments nor
	// configured roots.
	ErrNoTargets = errors.New("You must either specify PATH arguments, or provide a configuration file.") //nolint:revive,stylecheck // user-facing message

	// ErrInvalidTarget is wrapped when a path is neither a regular file nor
	// a directory.
	ErrInvalidTarget = errors.New("not a file or directory")
)

// Runner lints a set of paths and feeds the findings to a Handler.
type Runner struct {
	Registry *Registry
	Resolver *config.Resolver
	Parser   parser.Parser
	Handler  ErrorHandler

	// Log receives progress messages: "Linting <path>..." at info level and
	// each rule name at debug level. Defaults to the logrus standard logger.
	Log logrus.FieldLogger
	// Tracer wraps every file and rule in a span. Defaults to a no-op
	// tracer.
	Tracer trace.Tracer
	// Dir is the directory whose configuration supplies roots when Run is
	// given no paths. Defaults to the working directory.
	Dir string
}

func (r *Runner) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

func (r *Runner) tracer() trace.Tracer {
	if r.Tracer == nil {
		return noop.NewTracerProvider().Tracer("cstlint")
	}
	return r.Tracer
}

// Run lints paths, prints the report and returns the exit status: ExitClean
// when nothing was found, ExitFindings when something was and ExitFatal with
// a non-nil error when the run could not complete.
func (r *Runner) Run(ctx context.Context, paths []string) (int, error) {
	ctx, span := r.tracer().Start(ctx, "lint.run")
	defer span.End()

	explicit := len(paths) > 0
	targets, err := r.targets(paths)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ExitFatal, err
	}
	for _, path := range targets {
		if err := r.lintPath(ctx, path, explicit); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return ExitFatal, err
		}
	}
	r.log().Debug("reporting")
	if err := r.Handler.Print(); err != nil {
		return ExitFatal, err
	}
	if r.Handler.HadErrors() {
		return ExitFindings, nil
	}
	return ExitClean, nil
}

func (r *Runner) targets(paths []string) ([]string, error) {
	if len(paths) > 0 {
		return paths, nil
	}
	dir := r.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}
	r.log().WithField("dir", dir).Debug("resolving roots")
	cfg, err := r.Resolver.Resolve(dir)
	if err != nil {
		return nil, err
	}
	roots := cfg.Roots()
	if len(roots) == 0 {
		return nil, ErrNoTargets
	}
	return roots, nil
}

func (r *Runner) lintPath(ctx context.Context, path string, explicit bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrInvalidTarget, err)
	}
	switch {
	case info.Mode().IsRegular():
		return r.lintFile(ctx, path)
	case info.IsDir():
		if explicit && config.HasConfigFile(path) {
			r.log().Warnf("%s contains %s; run cstlint from that directory without arguments to lint with its configuration",
				path, config.FileName)
		}
		return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !IsSourceFile(p) {
				return nil
			}
			return r.lintFile(ctx, p)
		})
	default:
		return fmt.Errorf("%s: %w", path, ErrInvalidTarget)
	}
}

func (r *Runner) lintFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := r.tracer().Start(ctx, "lint.file", trace.WithAttributes(attribute.String("file", path)))
	defer span.End()

	r.log().Infof("Linting %s...", path)
	fc, err := r.Resolver.ForFile(path)
	if err != nil {
		return err
	}
	file := NewFile(path, r.Parser)
	for _, name := range fc.Linters {
		rule, ok := r.Registry.Lookup(name)
		if !ok {
			return fmt.Errorf("%s: %w: unknown linter %q", path, config.ErrInvalidConfig, name)
		}
		r.log().Debugf(" - %s", name)
		if !rule.ShouldLintFile(file) || fc.SuppressedForFile(name) {
			continue
		}
		findings, err := r.runRule(ctx, rule, file)
		if err != nil {
			return err
		}
		findings = filterSuppressed(findings, rule, fc, file)
		if len(findings) > 0 {
			r.Handler.ProcessErrors(rule, fc, findings)
		}
	}
	return nil
}

// runRule runs one rule on one file. Failures of the rule, including
// panics, become a single tool error finding. Only cancellation of ctx is
// returned as an error.
func (r *Runner) runRule(ctx context.Context, rule *Rule, file *File) (findings []Finding, err error) {
	ctx, span := r.tracer().Start(ctx, "lint.rule", trace.WithAttributes(
		attribute.String("rule", rule.Name),
		attribute.String("file", file.Path)))
	defer span.End()

	fail := func(cause error) []Finding {
		span.RecordError(cause)
		span.SetStatus(codes.Error, cause.Error())
		r.log().WithField("rule", rule.Name).Debugf("%s: %v", file.Path, cause)
		return []Finding{toolError(rule, file, cause)}
	}
	defer func() {
		if v := recover(); v != nil {
			findings, err = fail(fmt.Errorf("panic: %v", v)), nil
		}
	}()

	linter, err := rule.Instantiate(file)
	if err != nil {
		return fail(err), nil
	}
	if linter.IsSuppressedForFile() {
		return nil, nil
	}
	findings, err = linter.LintErrors(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return fail(err), nil
	}
	for i := range findings {
		f := &findings[i]
		if f.Rule == "" {
			f.Rule = rule.Name
		}
		if f.Severity == severityUnset {
			f.Severity = rule.Severity
		}
		if f.Pos.File == "" {
			f.Pos.File = file.Path
		}
	}
	return findings, nil
}

func toolError(rule *Rule, file *File, err error) Finding {
	return Finding{
		Pos:       Position{File: file.Path},
		Message:   fmt.Sprintf("%s failed: %v", rule.Name, err),
		Rule:      rule.Name,
		Severity:  SeverityError,
		ToolError: true,
	}
}

func filterSuppressed(findings []Finding, rule *Rule, fc *config.FileConfig, file *File) []Finding {
	var out []Finding
	markers := file.Markers()
	for _, f := range findings {
		if f.Pos.Line > 0 && (fc.SuppressedAt(rule.Name, f.Pos.Line) || markers.SuppressesLine(rule.Name, f.Pos.Line)) {
			continue
		}
		out = append(out, f)
	}
	return out
}
