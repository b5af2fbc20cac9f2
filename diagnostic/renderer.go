// Copyright © 2024 The cstlint authors

package diagnostic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth is the column at which notes are wrapped when Renderer.Width
// is zero.
const DefaultWidth = 100

// DefaultTabWidth is the tab stop used when Renderer.TabWidth is zero.
const DefaultTabWidth = 4

// Renderer formats diagnostics as annotated source snippets. A Renderer
// caches the lines of every file it displays, so one Renderer should be used
// per report.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// Width is the column at which note and help text wraps.
	Width int

	// TabWidth is the distance between tab stops when source lines are
	// displayed.
	TabWidth int

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)

	sources map[string][]string
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := choosePalette(r.Color, fileFromWriter(w))
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	r.writeHeader(ew, d, p)
	for _, span := range d.Spans {
		r.writeSpan(ew, span, d.Severity, p)
	}
	for _, note := range d.Notes {
		r.writeTrailer(ew, "note", note, p)
	}
	for _, help := range d.Help {
		r.writeTrailer(ew, "help", help, p)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter keeps the first write error and drops every write after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func severityColor(s Severity, p palette) string {
	switch s {
	case SeverityError:
		return p.boldRed
	case SeverityWarning:
		return p.yellow
	default:
		return p.boldCyan
	}
}

// writeHeader writes "severity[code]: message".
func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	label := d.Severity.String()
	if d.Code != "" {
		label += "[" + d.Code + "]"
	}
	ew.printf("%s%s%s%s: %s%s%s\n",
		severityColor(d.Severity, p), p.bold, label, p.reset,
		p.bold, d.Message, p.reset)
}

// writeTrailer writes a "= note:" style line, wrapping long text and
// aligning continuation lines under the first.
func (r *Renderer) writeTrailer(ew *errWriter, kind, text string, p palette) {
	width := r.Width
	if width <= 0 {
		width = DefaultWidth
	}
	lead := fmt.Sprintf("   = %s: ", kind)
	limit := width - len(lead)
	if limit < 20 {
		limit = 20
	}
	lines := strings.SplitN(wordwrap.String(text, limit), "\n", 2)
	color := p.boldCyan
	if kind == "help" {
		color = p.green
	}
	ew.printf("   %s=%s %s: %s\n", color, p.reset, kind, lines[0])
	if len(lines) > 1 {
		ew.print(indent.String(lines[1], uint(len(lead))))
		ew.print("\n")
	}
}

func location(span Span) string {
	switch {
	case span.Line <= 0:
		return span.File
	case span.Col <= 0:
		return fmt.Sprintf("%s:%d", span.File, span.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
	}
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, sev Severity, p palette) {
	ew.printf("  %s-->%s %s\n", p.boldBlue, p.reset, location(span))

	source, ok := r.sourceLine(span.File, span.Line)
	if !ok {
		ew.printf("   %s|%s\n", p.boldBlue, p.reset)
		return
	}

	num := strconv.Itoa(span.Line)
	pad := strings.Repeat(" ", len(num))
	gutter := func(label string) string {
		return fmt.Sprintf(" %s%s |%s", p.boldBlue, label, p.reset)
	}

	ew.printf("%s\n", gutter(pad))
	ew.printf("%s  %s\n", gutter(num), r.expandTabs(source))

	// Columns are byte based; clamp them to the line so that findings on
	// trailing whitespace and line ends still get a caret.
	col := span.Col
	if col <= 0 {
		col = 1
	}
	if col > len(source)+1 {
		col = len(source) + 1
	}
	end := span.EndCol
	if end <= 0 {
		end = detectEndCol(source, col)
	}
	if end < col {
		end = col
	}
	if end > len(source) {
		end = len(source)
	}

	before := r.displayWidth(source[:col-1], 0)
	marked := 1
	if col <= end {
		marked = r.displayWidth(source[col-1:end], before)
	}
	if marked < 1 {
		marked = 1
	}

	color := severityColor(sev, p)
	ew.printf("%s  %s%s%s%s", gutter(pad),
		strings.Repeat(" ", before), color, strings.Repeat("^", marked), p.reset)
	if span.Label != "" {
		ew.printf(" %s%s%s", color, span.Label, p.reset)
	}
	ew.print("\n")
	ew.printf("%s\n", gutter(pad))
}

// sourceLine returns line (1-based) of file without its line terminator.
func (r *Renderer) sourceLine(file string, line int) (string, bool) {
	if line <= 0 || file == "" {
		return "", false
	}
	lines, ok := r.sources[file]
	if !ok {
		lines = r.readLines(file)
		if r.sources == nil {
			r.sources = make(map[string][]string)
		}
		r.sources[file] = lines
	}
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

func (r *Renderer) readLines(file string) []string {
	read := r.SourceReader
	if read == nil {
		read = func(name string) ([]byte, error) {
			return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
		}
	}
	data, err := read(file)
	if err != nil {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// detectEndCol returns the 1-based column of the last byte of the token
// starting at col.
func detectEndCol(source string, col int) int {
	if col > len(source) {
		return col
	}
	end := col - 1
	for end < len(source) {
		ch, size := utf8.DecodeRuneInString(source[end:])
		if strings.ContainsRune(" \t()[]{};,", ch) {
			break
		}
		end += size
	}
	if end == col-1 {
		return col
	}
	return end
}

func (r *Renderer) tabWidth() int {
	if r.TabWidth > 0 {
		return r.TabWidth
	}
	return DefaultTabWidth
}

// displayWidth returns the number of terminal cells s occupies when it
// starts at cell start, with tabs advancing to the next tab stop.
func (r *Renderer) displayWidth(s string, start int) int {
	tw := r.tabWidth()
	w := start
	for _, ch := range s {
		if ch == '\t' {
			w += tw - w%tw
		} else {
			w++
		}
	}
	return w - start
}

func (r *Renderer) expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	tw := r.tabWidth()
	var b strings.Builder
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			n := tw - w%tw
			b.WriteString(strings.Repeat(" ", n))
			w += n
			continue
		}
		b.WriteRune(ch)
		w++
	}
	return b.String()
}

// fileFromWriter returns the *os.File behind w, or nil.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
