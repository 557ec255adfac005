package evaluator

import (
	"context"

	"github.com/sandrolain/jsonmap/pkg/types"
)

// evalNode evaluates a single AST node.
// Every node evaluates to exactly one JSON value or fails with an error.
func (e *Evaluator) evalNode(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (any, error) {
	if e.opts.MaxDepth > 0 && depth > e.opts.MaxDepth {
		return nil, types.NewEvalError(types.ErrTypeMismatch,
			"Evaluation recursion limit exceeded", ec.Path())
	}
	depth++

	switch node.Type {
	case types.NodeNull:
		return nil, nil
	case types.NodeBoolean:
		return node.BoolValue, nil
	case types.NodeNumber:
		return node.NumValue, nil
	case types.NodeString:
		return node.StrValue, nil
	case types.NodeList:
		return e.evalList(ctx, node, ec, depth)
	case types.NodeObject:
		return e.evalObject(ctx, node.Entries, ec, depth)
	case types.NodeRef:
		return e.evalRef(node, ec)
	case types.NodeMap:
		return e.evalMap(ctx, node, ec, depth)
	case types.NodeZip:
		return e.evalZip(ctx, node, ec, depth)
	case types.NodeBind:
		return e.evalBind(ctx, node, ec, depth)
	default:
		return nil, types.NewEvalError(types.ErrTypeMismatch,
			"Unexpected AST node: "+string(node.Type), ec.Path())
	}
}

// evalList evaluates a list literal in order; failure short-circuits.
func (e *Evaluator) evalList(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (any, error) {
	out := make([]any, 0, len(node.Items))
	for i, item := range node.Items {
		value, err := e.evalNode(ctx, item, ec.withIndex(i), depth)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

// evalObject evaluates object literal entries in order, preserving the
// declared key order. Duplicate keys are rejected by the parser.
func (e *Evaluator) evalObject(ctx context.Context, entries []types.Entry, ec *EvalContext, depth int) (any, error) {
	out := types.NewOrderedObject(len(entries))
	for _, entry := range entries {
		value, err := e.evalNode(ctx, entry.Value, ec.withKey(entry.Key), depth)
		if err != nil {
			return nil, err
		}
		out.Set(entry.Key, value)
	}
	return out, nil
}

// evalBody evaluates the body of a map/zip/bind under the given context.
//
// An object body produces an object following object literal semantics. A
// list body with exactly one expression produces that expression's value
// unwrapped; with more than one expression it produces a list of the
// per-expression values.
func (e *Evaluator) evalBody(ctx context.Context, body *types.ASTNode, ec *EvalContext, depth int) (any, error) {
	if body.Type == types.NodeBodyObject {
		return e.evalObject(ctx, body.Entries, ec, depth)
	}

	// NodeBodyList; the parser guarantees at least one expression
	if len(body.Items) == 1 {
		return e.evalNode(ctx, body.Items[0], ec, depth)
	}

	out := make([]any, 0, len(body.Items))
	for i, item := range body.Items {
		value, err := e.evalNode(ctx, item, ec.withIndex(i), depth)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}
