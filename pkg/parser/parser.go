// Package parser implements the jsonmap lexer and parser.
//
// The parser uses a hand-written recursive descent approach. It consumes
// the token stream produced by [Lexer] and builds the Abstract Syntax Tree
// consumed by the evaluator, with detailed error reporting carrying source
// line and column.
//
// Object bodies come in two dialects: statement style (key = expr;) and
// JSON style ("key": expr,). The parser commits to a dialect on the first
// separator seen inside a body; mixing dialects in one body is an error.
package parser

import (
	"github.com/sandrolain/jsonmap/pkg/types"
)

// Parse parses a jsonmap program and returns the compiled Program.
//
// The function tokenizes the input, builds an AST, and validates the syntax.
// If parsing fails, it returns a detailed error with position information.
//
// Example:
//
//	prog, err := parser.Parse("speaker = &actor;")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Parse(program string) (*types.Program, error) {
	p := NewParser(program)
	return p.Parse()
}

// Compile is an alias for Parse, provided for API consistency.
func Compile(program string, opts ...CompileOption) (*types.Program, error) {
	p := NewParser(program, opts...)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits expression nesting depth to prevent stack overflow.
	MaxDepth int
}

// WithMaxDepth sets the maximum expression nesting depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
