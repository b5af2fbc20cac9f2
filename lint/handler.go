// Copyright © 2024 The cstlint authors

package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/cstlint/config"
	"github.com/luthersystems/cstlint/diagnostic"
)

// ErrorHandler receives findings as the Runner produces them and reports
// them when the run ends.
type ErrorHandler interface {
	// ProcessErrors records the findings of one rule on one file.
	ProcessErrors(rule *Rule, cfg *config.FileConfig, findings []Finding)
	// HadErrors reports whether any finding was recorded.
	HadErrors() bool
	// Print writes the report. Calls after the first do nothing.
	Print() error
}

// collector is the bookkeeping shared by the handlers.
type collector struct {
	findings []Finding
	printed  bool
}

func (c *collector) ProcessErrors(rule *Rule, cfg *config.FileConfig, findings []Finding) {
	for _, f := range findings {
		if f.Fix != nil && cfg != nil && cfg.AutoFixDisabled(rule.Name) {
			f.Fix = nil
		}
		c.findings = append(c.findings, f)
	}
}

func (c *collector) HadErrors() bool {
	return len(c.findings) > 0
}

// Findings returns everything recorded so far, in arrival order.
func (c *collector) Findings() []Finding {
	return c.findings
}

// PlainHandler prints findings as annotated source snippets followed by a
// summary line.
type PlainHandler struct {
	collector
	Out      io.Writer
	Renderer *diagnostic.Renderer
}

// NewPlainHandler returns a PlainHandler writing to w.
func NewPlainHandler(w io.Writer, color diagnostic.ColorMode) *PlainHandler {
	return &PlainHandler{
		Out:      w,
		Renderer: &diagnostic.Renderer{Color: color},
	}
}

// Print implements ErrorHandler.
func (h *PlainHandler) Print() error {
	if h.printed {
		return nil
	}
	h.printed = true
	if len(h.findings) == 0 {
		return nil
	}
	diags := make([]diagnostic.Diagnostic, 0, len(h.findings))
	for _, f := range h.findings {
		diags = append(diags, toDiagnostic(f))
	}
	if err := h.Renderer.RenderAll(h.Out, diags); err != nil {
		return err
	}
	_, err := fmt.Fprintf(h.Out, "\n%s\n", summary(h.findings))
	return err
}

func toDiagnostic(f Finding) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Code:    f.Rule,
		Message: f.Message,
		Notes:   f.Notes,
	}
	switch f.Severity {
	case SeverityError:
		d.Severity = diagnostic.SeverityError
	case SeverityInfo:
		d.Severity = diagnostic.SeverityInfo
	default:
		d.Severity = diagnostic.SeverityWarning
	}
	if f.Pos.Line > 0 {
		span := diagnostic.Span{File: f.Pos.File, Line: f.Pos.Line, Col: f.Pos.Col}
		if f.Blame != "" && !strings.Contains(f.Blame, "\n") {
			span.EndCol = f.Pos.Col + len(f.Blame) - 1
		}
		d.Spans = []diagnostic.Span{span}
	} else if f.Pos.File != "" {
		d.Spans = []diagnostic.Span{{File: f.Pos.File}}
	}
	if f.Fix != nil {
		if f.Fix.Replacement == "" {
			d.Help = append(d.Help, "remove it")
		} else {
			d.Help = append(d.Help, fmt.Sprintf("replace with `%s`", f.Fix.Replacement))
		}
	}
	return d
}

func summary(findings []Finding) string {
	files := map[string]bool{}
	for _, f := range findings {
		files[f.Pos.File] = true
	}
	return fmt.Sprintf("%s in %s", plural(len(findings), "finding"), plural(len(files), "file"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// JSONHandler prints all findings as one JSON array.
type JSONHandler struct {
	collector
	Out io.Writer
}

// NewJSONHandler returns a JSONHandler writing to w.
func NewJSONHandler(w io.Writer) *JSONHandler {
	return &JSONHandler{Out: w}
}

// Print implements ErrorHandler. An empty run prints "[]".
func (h *JSONHandler) Print() error {
	if h.printed {
		return nil
	}
	h.printed = true
	findings := h.findings
	if findings == nil {
		findings = []Finding{}
	}
	return FormatJSON(h.Out, findings)
}

// FormatJSON writes findings as an indented JSON array.
func FormatJSON(w io.Writer, findings []Finding) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}

var (
	_ ErrorHandler = (*PlainHandler)(nil)
	_ ErrorHandler = (*JSONHandler)(nil)
)
