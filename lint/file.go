// Copyright © 2024 The cstlint authors

package lint

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/luthersystems/cstlint/parser"
	"github.com/luthersystems/cstlint/syntax"
)

// File is one source file under lint. Its contents, tree and suppression
// markers are loaded on first use and shared by every rule run on the file.
type File struct {
	Path string

	parser parser.Parser

	contents []byte
	readErr  error
	read     bool

	tree     *syntax.Node
	parseErr error
	parsed   bool

	lineStarts []int
	markers    *Markers
}

// NewFile returns a File that reads path from disk when first needed.
func NewFile(path string, p parser.Parser) *File {
	return &File{Path: path, parser: p}
}

// NewFileFromSource returns a File with known contents.
func NewFileFromSource(path string, source []byte, p parser.Parser) *File {
	return &File{Path: path, parser: p, contents: source, read: true}
}

// Contents returns the file's bytes.
func (f *File) Contents() ([]byte, error) {
	if !f.read {
		f.read = true
		f.contents, f.readErr = os.ReadFile(f.Path) //nolint:gosec // CLI tool reads user-specified files
	}
	return f.contents, f.readErr
}

// Text returns the file contents as a string.
func (f *File) Text() (string, error) {
	b, err := f.Contents()
	return string(b), err
}

// Tree returns the file's syntax tree, running the parser the first time it
// is called. Failures are remembered and returned on every call.
func (f *File) Tree(ctx context.Context) (*syntax.Node, error) {
	if f.parsed {
		return f.tree, f.parseErr
	}
	f.parsed = true
	f.tree, f.parseErr = f.parse(ctx)
	return f.tree, f.parseErr
}

func (f *File) parse(ctx context.Context) (*syntax.Node, error) {
	src, err := f.Contents()
	if err != nil {
		return nil, err
	}
	if f.parser == nil {
		return nil, fmt.Errorf("%s: no parser configured", f.Path)
	}
	pr, err := f.parser.Parse(ctx, f.Path, src)
	if err != nil {
		return nil, err
	}
	root, err := pr.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	if root.FullText() != string(src) {
		return nil, fmt.Errorf("%s: %w: tree text differs from file contents", f.Path, syntax.ErrMalformedParseResult)
	}
	return root, nil
}

// Markers returns the in-source suppression markers of the file. An
// unreadable file has none.
func (f *File) Markers() *Markers {
	if f.markers == nil {
		src, _ := f.Contents()
		f.markers = ParseMarkers(src)
	}
	return f.markers
}

// Position converts a byte offset in the file to a Position.
func (f *File) Position(offset int) Position {
	if f.lineStarts == nil {
		src, _ := f.Contents()
		f.lineStarts = []int{0}
		for i, b := range src {
			if b == '\n' {
				f.lineStarts = append(f.lineStarts, i+1)
			}
		}
	}
	if offset < 0 {
		offset = 0
	}
	line := sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > offset })
	return Position{
		File:   f.Path,
		Line:   line,
		Col:    offset - f.lineStarts[line-1] + 1,
		Offset: offset,
	}
}
