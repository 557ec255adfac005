package types

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types.
const (
	// Literals
	NodeNull    NodeType = "null"
	NodeBoolean NodeType = "boolean"
	NodeNumber  NodeType = "number"
	NodeString  NodeType = "string"

	// Constructors
	NodeList   NodeType = "list"
	NodeObject NodeType = "object"

	// References
	NodeRef NodeType = "ref"

	// Scope constructs
	NodeMap  NodeType = "map"
	NodeZip  NodeType = "zip"
	NodeBind NodeType = "bind"

	// Bodies of map/zip/bind
	NodeBodyList   NodeType = "body-list"
	NodeBodyObject NodeType = "body-object"

	// The whole program: an ordered sequence of top-level bindings
	NodeProgram NodeType = "program"
)

// RefRoot selects the scope a reference starts from.
type RefRoot uint8

const (
	RootCurrent   RefRoot = iota // &   reads from the current scope
	RootAnonymous                // &?  reads from the anonymous scope
	RootGlobal                   // &!  reads from the global scope
)

// String returns the source form of the reference root.
func (r RefRoot) String() string {
	switch r {
	case RootAnonymous:
		return "&?"
	case RootGlobal:
		return "&!"
	default:
		return "&"
	}
}

// PathStep is one step of a reference path: either a field name or a list index.
type PathStep struct {
	Name    string
	Index   int
	IsIndex bool
}

// FieldStep creates a field-access path step.
func FieldStep(name string) PathStep {
	return PathStep{Name: name}
}

// IndexStep creates a list-index path step.
func IndexStep(index int) PathStep {
	return PathStep{Index: index, IsIndex: true}
}

// String returns the source form of the step.
func (s PathStep) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	if isBareName(s.Name) {
		return s.Name
	}
	return strconv.Quote(s.Name)
}

func isBareName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Entry is one (key, expression) pair of an object literal, object body,
// or program.
type Entry struct {
	Key    string
	Line   int
	Column int
	Value  *ASTNode
}

// ASTNode represents a node in the abstract syntax tree.
//
// A single struct is used for all node types; which fields are meaningful
// depends on Type:
//
//   - NodeBoolean: BoolValue
//   - NodeNumber: NumValue
//   - NodeString: StrValue
//   - NodeList, NodeBodyList: Items
//   - NodeObject, NodeBodyObject, NodeProgram: Entries
//   - NodeRef: Root, Steps
//   - NodeMap, NodeBind: Sources[0], Body
//   - NodeZip: Sources, Body
type ASTNode struct {
	Type   NodeType
	Line   int
	Column int

	StrValue  string
	NumValue  float64
	BoolValue bool

	Items   []*ASTNode
	Entries []Entry

	Root  RefRoot
	Steps []PathStep

	Sources []*ASTNode
	Body    *ASTNode
}

// NewASTNode creates a new AST node of the specified type at a source position.
func NewASTNode(nodeType NodeType, line, column int) *ASTNode {
	return &ASTNode{
		Type:   nodeType,
		Line:   line,
		Column: column,
	}
}

// RefString renders a reference node back to its source form, e.g. "&name.0",
// "&!.store" or "&?.0". It is used in evaluation error messages.
func (n *ASTNode) RefString() string {
	var b strings.Builder
	b.WriteString(n.Root.String())
	for i, step := range n.Steps {
		if i > 0 || n.Root != RootCurrent {
			b.WriteByte('.')
		}
		b.WriteString(step.String())
	}
	return b.String()
}

// String returns a string representation of the node type.
func (n *ASTNode) String() string {
	if n.Type == NodeRef {
		return fmt.Sprintf("%s(%s)", n.Type, n.RefString())
	}
	return string(n.Type)
}
