package evaluator

import (
	"fmt"

	"github.com/sandrolain/jsonmap/pkg/types"
)

// evalRef resolves a reference expression against the environment.
//
// The reference root selects the start value: & reads from the current
// scope, &? from the anonymous scope, &! from the global scope. With no
// steps the start value is returned directly; otherwise each path step is
// applied in turn.
func (e *Evaluator) evalRef(node *types.ASTNode, ec *EvalContext) (any, error) {
	var v any
	switch node.Root {
	case types.RootAnonymous:
		v = ec.Anon()
	case types.RootGlobal:
		v = ec.Global()
	default:
		v = ec.Current()
	}

	for _, step := range node.Steps {
		next, err := resolveStep(v, step, node, ec)
		if err != nil {
			return nil, err
		}
		v = next
	}

	return v, nil
}

// resolveStep applies one path step to a value.
//
//   - A field step requires an object containing the key.
//   - An index step requires a list longer than the index; numeric access
//     into objects is not allowed (use the quoted form for numeric-string
//     keys).
func resolveStep(v any, step types.PathStep, ref *types.ASTNode, ec *EvalContext) (any, error) {
	if step.IsIndex {
		list, ok := v.([]any)
		if !ok {
			return nil, types.NewEvalError(types.ErrTypeMismatch,
				fmt.Sprintf("Cannot index into %s with %d (reference %s): %s expected",
					types.KindOf(v), step.Index, ref.RefString(), types.KindList),
				ec.Path()).WithKinds(types.KindList, types.KindOf(v))
		}
		if step.Index >= len(list) {
			return nil, types.NewEvalError(types.ErrOutOfBounds,
				fmt.Sprintf("Index %d out of bounds for list of length %d (reference %s)",
					step.Index, len(list), ref.RefString()),
				ec.Path())
		}
		return list[step.Index], nil
	}

	switch obj := v.(type) {
	case map[string]any:
		value, ok := obj[step.Name]
		if !ok {
			return nil, missingField(step.Name, ref, ec)
		}
		return value, nil
	case *types.OrderedObject:
		value, ok := obj.Get(step.Name)
		if !ok {
			return nil, missingField(step.Name, ref, ec)
		}
		return value, nil
	default:
		return nil, types.NewEvalError(types.ErrTypeMismatch,
			fmt.Sprintf("Cannot access field %q on %s (reference %s): %s expected",
				step.Name, types.KindOf(v), ref.RefString(), types.KindObject),
			ec.Path()).WithKinds(types.KindObject, types.KindOf(v))
	}
}

func missingField(name string, ref *types.ASTNode, ec *EvalContext) error {
	return types.NewEvalError(types.ErrMissingField,
		fmt.Sprintf("Field %q not found (reference %s)", name, ref.RefString()),
		ec.Path())
}
