package evaluator

import (
	"context"
	"fmt"
	"sort"

	"github.com/sandrolain/jsonmap/pkg/types"
)

// evalBind evaluates: bind source body
//
// The body is evaluated once, with current replaced by the evaluated
// source. The anonymous and global scopes are untouched: &? inside a bind
// still refers to the outer anonymous value.
func (e *Evaluator) evalBind(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (any, error) {
	v, err := e.evalNode(ctx, node.Sources[0], ec, depth)
	if err != nil {
		return nil, err
	}
	return e.evalBody(ctx, node.Body, ec.withCurrent(v), depth)
}

// evalMap evaluates: map source body
//
// The source must evaluate to a list. For each element, the body is
// evaluated with the element as both the current and the anonymous scope.
func (e *Evaluator) evalMap(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (any, error) {
	src, err := e.evalNode(ctx, node.Sources[0], ec, depth)
	if err != nil {
		return nil, err
	}

	list, ok := src.([]any)
	if !ok {
		return nil, types.NewEvalError(types.ErrTypeMismatch,
			fmt.Sprintf("The source of map must be a %s, got %s", types.KindList, types.KindOf(src)),
			ec.Path()).WithKinds(types.KindList, types.KindOf(src))
	}

	out := make([]any, 0, len(list))
	for i, elem := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, err := e.evalBody(ctx, node.Body, ec.withElement(elem).withIndex(i), depth)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

// evalZip evaluates: zip source... body
//
// Every source must evaluate to a list. Iteration length is the minimum
// source length. For the i-th iteration the anonymous scope is the
// positional tuple of the i-th elements and the current scope is the merged
// namespace of those elements that are objects, later sources winning on
// key collisions.
func (e *Evaluator) evalZip(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (any, error) {
	lists := make([][]any, len(node.Sources))
	n := -1
	for i, source := range node.Sources {
		src, err := e.evalNode(ctx, source, ec, depth)
		if err != nil {
			return nil, err
		}
		list, ok := src.([]any)
		if !ok {
			return nil, types.NewEvalError(types.ErrTypeMismatch,
				fmt.Sprintf("Source %d of zip must be a %s, got %s", i, types.KindList, types.KindOf(src)),
				ec.Path()).WithKinds(types.KindList, types.KindOf(src))
		}
		lists[i] = list
		if n < 0 || len(list) < n {
			n = len(list)
		}
	}

	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tuple := make([]any, len(lists))
		for j, list := range lists {
			tuple[j] = list[i]
		}

		child := ec.withTuple(tuple, mergeNamespaces(tuple)).withIndex(i)
		value, err := e.evalBody(ctx, node.Body, child, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

// mergeNamespaces merges the object elements of a zip tuple into a single
// namespace, left to right, later keys winning. Non-object elements
// contribute nothing; they remain reachable through &?.i only.
//
// Keys of plain maps are merged in sorted order so that the merged object
// is deterministic even when it escapes into the output (via a bare &).
func mergeNamespaces(tuple []any) *types.OrderedObject {
	merged := types.NewOrderedObject(0)
	for _, elem := range tuple {
		switch obj := elem.(type) {
		case *types.OrderedObject:
			for _, key := range obj.Keys {
				merged.Set(key, obj.Values[key])
			}
		case map[string]any:
			keys := make([]string, 0, len(obj))
			for key := range obj {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				merged.Set(key, obj[key])
			}
		}
	}
	return merged
}
