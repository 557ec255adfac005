package evaluator

import (
	"strconv"
	"strings"
)

// pathSeg is one segment of the output path used in evaluation errors.
type pathSeg struct {
	key     string
	index   int
	isIndex bool
}

// EvalContext carries the three scope roles of the environment model plus
// the output path of the expression under evaluation.
//
//   - current: the value unprefixed references (&name) read from
//   - anon: the value &? returns; a positional tuple inside zip
//   - global: the original top-level input, reachable via &!
//
// Contexts are immutable: each scope construct derives a child context and
// the parent is never modified, so a Program can be evaluated concurrently.
type EvalContext struct {
	current any
	anon    any
	global  any
	path    []pathSeg
}

// NewContext creates the initial evaluation context, in which all three
// scopes are the input document.
func NewContext(input any) *EvalContext {
	return &EvalContext{
		current: input,
		anon:    input,
		global:  input,
	}
}

// Current returns the current scope value.
func (c *EvalContext) Current() any {
	return c.current
}

// Anon returns the anonymous scope value.
func (c *EvalContext) Anon() any {
	return c.anon
}

// Global returns the global scope value.
func (c *EvalContext) Global() any {
	return c.global
}

// withCurrent derives the context for a bind body: current is replaced,
// anon and global are untouched.
func (c *EvalContext) withCurrent(v any) *EvalContext {
	child := *c
	child.current = v
	return &child
}

// withElement derives the context for one map iteration: the element is
// both the current and the anonymous scope.
func (c *EvalContext) withElement(e any) *EvalContext {
	child := *c
	child.current = e
	child.anon = e
	return &child
}

// withTuple derives the context for one zip iteration: anon is the
// positional tuple and current is the merged namespace of its object
// elements.
func (c *EvalContext) withTuple(tuple []any, merged any) *EvalContext {
	child := *c
	child.current = merged
	child.anon = tuple
	return &child
}

// withKey derives a context whose output path is extended by an object key.
func (c *EvalContext) withKey(key string) *EvalContext {
	child := *c
	child.path = appendSeg(c.path, pathSeg{key: key})
	return &child
}

// withIndex derives a context whose output path is extended by a list index.
func (c *EvalContext) withIndex(i int) *EvalContext {
	child := *c
	child.path = appendSeg(c.path, pathSeg{index: i, isIndex: true})
	return &child
}

// appendSeg appends without aliasing the parent's backing array.
func appendSeg(path []pathSeg, seg pathSeg) []pathSeg {
	out := make([]pathSeg, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}

// Path renders the output path in $-rooted form, e.g. "$.classes[1].subject".
func (c *EvalContext) Path() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, seg := range c.path {
		if seg.isIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.index))
			b.WriteByte(']')
		} else {
			b.WriteByte('.')
			b.WriteString(seg.key)
		}
	}
	return b.String()
}
