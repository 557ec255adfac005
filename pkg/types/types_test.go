package types

import (
	"encoding/json"
	"testing"
)

func TestOrderedObjectMarshalOrder(t *testing.T) {
	o := NewOrderedObject(3)
	o.Set("z", 1.0)
	o.Set("a", []any{true, nil})
	o.Set("m", "x")

	out, err := json.Marshal(o)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"z":1,"a":[true,null],"m":"x"}`; string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestOrderedObjectSetKeepsPosition(t *testing.T) {
	o := NewOrderedObject(2)
	o.Set("a", 1.0)
	o.Set("b", 2.0)
	o.Set("a", 3.0)

	if o.Len() != 2 {
		t.Fatalf("got %d entries, want 2", o.Len())
	}
	out, _ := json.Marshal(o)
	if want := `{"a":3,"b":2}`; string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"null", nil, KindNull},
		{"boolean", true, KindBoolean},
		{"number", 1.5, KindNumber},
		{"string", "s", KindString},
		{"list", []any{}, KindList},
		{"map object", map[string]any{}, KindObject},
		{"ordered object", NewOrderedObject(0), KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.v); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorCodeKinds(t *testing.T) {
	tests := []struct {
		code ErrorCode
		kind ErrorKind
	}{
		{ErrUnknownChar, KindLexError},
		{ErrStringNotClosed, KindLexError},
		{ErrSyntax, KindParseError},
		{ErrMixedDialect, KindParseError},
		{ErrDuplicateName, KindDuplicateKey},
		{ErrMissingField, KindMissingField},
		{ErrOutOfBounds, KindOutOfBounds},
		{ErrTypeMismatch, KindTypeMismatch},
	}

	for _, tt := range tests {
		if got := tt.code.Kind(); got != tt.kind {
			t.Errorf("%s: got %s, want %s", tt.code, got, tt.kind)
		}
	}
}

func TestErrorFormatting(t *testing.T) {
	posErr := NewError(ErrSyntax, "oops", 3, 7)
	if got, want := posErr.Error(), "P0201 (ParseError) at line 3, column 7: oops"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	pathErr := NewEvalError(ErrMissingField, "no such field", "$.x")
	if got, want := pathErr.Error(), "E0301 (MissingField) at $.x: no such field"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRefString(t *testing.T) {
	tests := []struct {
		name string
		node *ASTNode
		want string
	}{
		{
			"current with steps",
			&ASTNode{Type: NodeRef, Root: RootCurrent, Steps: []PathStep{FieldStep("a"), IndexStep(0)}},
			"&a.0",
		},
		{
			"quoted field",
			&ASTNode{Type: NodeRef, Root: RootCurrent, Steps: []PathStep{FieldStep("b c")}},
			`&"b c"`,
		},
		{
			"anonymous tuple index",
			&ASTNode{Type: NodeRef, Root: RootAnonymous, Steps: []PathStep{IndexStep(1)}},
			"&?.1",
		},
		{
			"bare global",
			&ASTNode{Type: NodeRef, Root: RootGlobal},
			"&!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.RefString(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
