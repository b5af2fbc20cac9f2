// Copyright © 2024 The cstlint authors

// Package parser connects cstlint to the external Hack parser.
//
// The parser itself is not part of cstlint. A Parser turns source text into
// a serialized parse result (see syntax.ParseResult); Command runs the
// hh_parse binary and Cache memoizes results on disk.
package parser

import (
	"context"

	"github.com/luthersystems/cstlint/syntax"
)

// Parser produces the serialized parse result for one source file.
type Parser interface {
	Parse(ctx context.Context, path string, source []byte) (*syntax.ParseResult, error)
}

// Func adapts a function to the Parser interface.
type Func func(ctx context.Context, path string, source []byte) (*syntax.ParseResult, error)

// Parse calls f.
func (f Func) Parse(ctx context.Context, path string, source []byte) (*syntax.ParseResult, error) {
	return f(ctx, path, source)
}

// Identifier is implemented by parsers whose output depends on settings
// other than the source text, such as the binary they run. Cache keys
// include the identity.
type Identifier interface {
	Identity() string
}

func identity(p Parser) string {
	if id, ok := p.(Identifier); ok {
		return id.Identity()
	}
	return ""
}
