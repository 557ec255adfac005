// Package jsonmap implements a small domain-specific language for
// transforming JSON documents into other JSON documents.
//
// A jsonmap program is a sequence of named bindings whose right-hand sides
// project, restructure, and iterate over an input JSON value:
//
//	speaker = &actor;
//	classes = map &schedule { subject = &class; };
//	pairs   = zip &firsts &lasts { first = &?.0; last = &?.1; };
//
// References read from one of three scopes: & from the current scope,
// &? from the anonymous scope (the element under iteration, or the
// positional tuple inside zip), and &! from the original top-level input.
//
// # Quick Start
//
//	// Translate in a single call
//	result, err := jsonmap.Translate("speaker = &actor;", input)
//
//	// Compile once, evaluate many times
//	prog, err := jsonmap.Compile("speaker = &actor;")
//	out1, _ := evaluator.New().Eval(ctx, prog, input1)
//	out2, _ := evaluator.New().Eval(ctx, prog, input2)
//
// Output objects are *types.OrderedObject values whose MarshalJSON emits
// keys in declaration order of the producing expression.
//
// # Errors
//
// Compilation and evaluation errors are *types.Error values carrying a
// stable code, a category (LexError, ParseError, MissingField, OutOfBounds,
// TypeMismatch, DuplicateKey), and either a source position (line, column)
// or a $-rooted evaluation path into the output document. When the context
// passed to TranslateWithContext is cancelled, the context's own error is
// returned instead. Any error aborts the whole translation; no partial
// output is produced.
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/jsonmap/pkg/parser
//   - Evaluator: github.com/sandrolain/jsonmap/pkg/evaluator
//   - Types: github.com/sandrolain/jsonmap/pkg/types
package jsonmap

import (
	"context"
	"fmt"

	"github.com/sandrolain/jsonmap/pkg/evaluator"
	"github.com/sandrolain/jsonmap/pkg/parser"
	"github.com/sandrolain/jsonmap/pkg/types"
)

// Version returns the current version of jsonmap.
func Version() string {
	return "v0.1.0-dev"
}

// Compile compiles a jsonmap program for repeated evaluation.
//
// The compiled program can be evaluated multiple times against different
// documents. It is safe for concurrent use.
func Compile(program string, opts ...parser.CompileOption) (*types.Program, error) {
	return parser.Compile(program, opts...)
}

// MustCompile is like Compile but panics if the program cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(program string) *types.Program {
	prog, err := Compile(program)
	if err != nil {
		panic(fmt.Sprintf("jsonmap: Compile(%q): %v", program, err))
	}
	return prog
}

// Translate compiles and evaluates a program against an input document in a
// single call.
//
// For repeated evaluations of the same program, use Compile instead.
//
// Example:
//
//	result, err := jsonmap.Translate("speaker = &actor;", input)
func Translate(program string, input any, opts ...evaluator.EvalOption) (any, error) {
	return TranslateWithContext(context.Background(), program, input, opts...)
}

// TranslateWithContext translates with a custom context.
func TranslateWithContext(ctx context.Context, program string, input any, opts ...evaluator.EvalOption) (any, error) {
	prog, err := Compile(program)
	if err != nil {
		return nil, err
	}

	ev := evaluator.New(opts...)
	return ev.Eval(ctx, prog, input)
}
