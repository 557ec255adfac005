// Package evaluator implements the jsonmap evaluation engine.
//
// The evaluator receives a parsed Abstract Syntax Tree (AST) from the parser
// and walks it against an input JSON value, producing an output JSON value.
// Evaluation is a pure recursive walk: no state is shared between calls, so
// a compiled [types.Program] may be evaluated from many goroutines at once.
//
// # Example
//
//	ev := evaluator.New()
//	result, err := ev.Eval(ctx, prog, input)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Errors
//
// All evaluation errors are fatal for the run; no partial output is
// produced. Errors carry a $-rooted path into the output document that
// locates the failing binding (e.g. "$.classes[1].subject").
package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sandrolain/jsonmap/pkg/types"
)

// Evaluator evaluates jsonmap programs against input documents.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// MaxDepth limits recursion depth.
	MaxDepth int
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: 10000,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
	}
}

// Eval evaluates a program against an input document.
//
// The result is a *types.OrderedObject whose entries are, in order, the
// evaluated right-hand sides of the program's top-level bindings.
func (e *Evaluator) Eval(ctx context.Context, prog *types.Program, input any) (any, error) {
	if prog == nil || prog.AST() == nil {
		return nil, fmt.Errorf("invalid program")
	}

	if e.opts.Debug {
		e.logger.Debug("evaluating program",
			slog.Int("bindings", len(prog.Bindings())),
			slog.String("input_kind", types.KindOf(input)),
		)
	}

	evalCtx := NewContext(input)

	out := types.NewOrderedObject(len(prog.Bindings()))
	for _, entry := range prog.Bindings() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, err := e.evalNode(ctx, entry.Value, evalCtx.withKey(entry.Key), 0)
		if err != nil {
			return nil, err
		}
		out.Set(entry.Key, value)
	}

	return out, nil
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithMaxDepth sets the maximum recursion depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}
