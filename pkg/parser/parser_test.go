package parser

import (
	"errors"
	"testing"

	"github.com/sandrolain/jsonmap/pkg/types"
)

func parseProgram(t *testing.T, src string) *types.Program {
	t.Helper()

	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return prog
}

func parseError(t *testing.T, src string) *types.Error {
	t.Helper()

	_, err := Parse(src)
	if err == nil {
		t.Fatalf("Parse(%q) succeeded, want error", src)
	}
	var jmErr *types.Error
	if !errors.As(err, &jmErr) {
		t.Fatalf("Parse(%q): expected *types.Error, got %T: %v", src, err, err)
	}
	return jmErr
}

func TestParseBindings(t *testing.T) {
	prog := parseProgram(t, "speaker = &actor; message = &line;")

	bindings := prog.Bindings()
	if len(bindings) != 2 {
		t.Fatalf("got %d bindings, want 2", len(bindings))
	}
	if bindings[0].Key != "speaker" || bindings[1].Key != "message" {
		t.Errorf("binding keys: got %q, %q", bindings[0].Key, bindings[1].Key)
	}
	if bindings[0].Value.Type != types.NodeRef {
		t.Errorf("first binding type: got %s, want ref", bindings[0].Value.Type)
	}
}

func TestParseTopLevelJSONDialect(t *testing.T) {
	prog := parseProgram(t, `"first name": &a, last: &b,`)

	bindings := prog.Bindings()
	if len(bindings) != 2 {
		t.Fatalf("got %d bindings, want 2", len(bindings))
	}
	if bindings[0].Key != "first name" {
		t.Errorf("quoted binding name: got %q", bindings[0].Key)
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		typ  types.NodeType
	}{
		{"null", "x = null;", types.NodeNull},
		{"true", "x = true;", types.NodeBoolean},
		{"false", "x = false;", types.NodeBoolean},
		{"number", "x = -1.5e2;", types.NodeNumber},
		{"string", `x = "hi";`, types.NodeString},
		{"list", "x = [1, 2, 3];", types.NodeList},
		{"empty list", "x = [];", types.NodeList},
		{"object", "x = { a = 1; };", types.NodeObject},
		{"empty object", "x = {};", types.NodeObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseProgram(t, tt.src)
			if got := prog.Bindings()[0].Value.Type; got != tt.typ {
				t.Errorf("got %s, want %s", got, tt.typ)
			}
		})
	}
}

func TestParseNumberValue(t *testing.T) {
	prog := parseProgram(t, "x = -1.5e2;")
	if got := prog.Bindings()[0].Value.NumValue; got != -150 {
		t.Errorf("got %v, want -150", got)
	}
}

func TestParseStringEscapes(t *testing.T) {
	prog := parseProgram(t, `x = "a\n\t\"b\" é";`)
	if got := prog.Bindings()[0].Value.StrValue; got != "a\n\t\"b\" é" {
		t.Errorf("got %q", got)
	}
}

func TestParseBadEscape(t *testing.T) {
	err := parseError(t, `x = "\q";`)
	if err.Code != types.ErrBadEscape {
		t.Errorf("got %s, want %s", err.Code, types.ErrBadEscape)
	}
}

func TestParseRefPaths(t *testing.T) {
	prog := parseProgram(t, `x = &a."b c".2;`)

	ref := prog.Bindings()[0].Value
	if ref.Type != types.NodeRef || ref.Root != types.RootCurrent {
		t.Fatalf("unexpected ref node: %+v", ref)
	}
	want := []types.PathStep{
		types.FieldStep("a"),
		types.FieldStep("b c"),
		types.IndexStep(2),
	}
	if len(ref.Steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(ref.Steps), len(want))
	}
	for i, step := range want {
		if ref.Steps[i] != step {
			t.Errorf("step %d: got %+v, want %+v", i, ref.Steps[i], step)
		}
	}
}

func TestParseRefRoots(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		root  types.RefRoot
		steps int
	}{
		{"current", "x = &a;", types.RootCurrent, 1},
		{"bare current", "x = &;", types.RootCurrent, 0},
		{"anonymous", "x = &?;", types.RootAnonymous, 0},
		{"anonymous index", "x = &?.1;", types.RootAnonymous, 1},
		{"global bare", "x = &!;", types.RootGlobal, 0},
		{"global undotted first step", "x = &!store;", types.RootGlobal, 1},
		{"global dotted first step", "x = &!.store;", types.RootGlobal, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseProgram(t, tt.src)
			ref := prog.Bindings()[0].Value
			if ref.Root != tt.root {
				t.Errorf("root: got %v, want %v", ref.Root, tt.root)
			}
			if len(ref.Steps) != tt.steps {
				t.Errorf("steps: got %d, want %d", len(ref.Steps), tt.steps)
			}
		})
	}
}

func TestParseChainedNumericIndices(t *testing.T) {
	prog := parseProgram(t, "x = &matrix.0.1;")

	ref := prog.Bindings()[0].Value
	want := []types.PathStep{
		types.FieldStep("matrix"),
		types.IndexStep(0),
		types.IndexStep(1),
	}
	if len(ref.Steps) != len(want) {
		t.Fatalf("got %d steps (%v), want %d", len(ref.Steps), ref.Steps, len(want))
	}
	for i, step := range want {
		if ref.Steps[i] != step {
			t.Errorf("step %d: got %+v, want %+v", i, ref.Steps[i], step)
		}
	}
}

func TestParseNegativeIndexRejected(t *testing.T) {
	err := parseError(t, "x = &?.-1;")
	if err.Code != types.ErrSyntax {
		t.Errorf("got %s, want %s", err.Code, types.ErrSyntax)
	}
}

func TestParseObjectDialects(t *testing.T) {
	t.Run("statement style", func(t *testing.T) {
		prog := parseProgram(t, "x = { a = 1; b = 2; };")
		obj := prog.Bindings()[0].Value
		if len(obj.Entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(obj.Entries))
		}
	})

	t.Run("json style", func(t *testing.T) {
		prog := parseProgram(t, `x = { "a": 1, "b": 2 };`)
		obj := prog.Bindings()[0].Value
		if len(obj.Entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(obj.Entries))
		}
	})

	t.Run("mixed separators rejected", func(t *testing.T) {
		err := parseError(t, "x = { a = 1, b = 2 };")
		if err.Code != types.ErrMixedDialect {
			t.Errorf("got %s, want %s", err.Code, types.ErrMixedDialect)
		}
	})

	t.Run("mixed assignment rejected", func(t *testing.T) {
		err := parseError(t, `x = { a = 1; "b": 2; };`)
		if err.Code != types.ErrMixedDialect {
			t.Errorf("got %s, want %s", err.Code, types.ErrMixedDialect)
		}
	})

	t.Run("mixing across nested bodies is allowed", func(t *testing.T) {
		parseProgram(t, `x = { inner: { a = 1; } };`)
	})
}

func TestParseDuplicateNames(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"top level", "x = 1; x = 2;"},
		{"object literal", "y = { a = 1; a = 2; };"},
		{"map body", "y = map &xs { a = 1; a = 2; };"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(t, tt.src)
			if err.Code != types.ErrDuplicateName {
				t.Errorf("got %s, want %s", err.Code, types.ErrDuplicateName)
			}
			if err.Code.Kind() != types.KindDuplicateKey {
				t.Errorf("kind: got %s, want %s", err.Code.Kind(), types.KindDuplicateKey)
			}
		})
	}
}

func TestParseMap(t *testing.T) {
	prog := parseProgram(t, "classes = map &schedule { subject = &class; };")

	node := prog.Bindings()[0].Value
	if node.Type != types.NodeMap {
		t.Fatalf("got %s, want map", node.Type)
	}
	if len(node.Sources) != 1 || node.Sources[0].Type != types.NodeRef {
		t.Errorf("unexpected sources: %+v", node.Sources)
	}
	if node.Body.Type != types.NodeBodyObject {
		t.Errorf("body: got %s, want body-object", node.Body.Type)
	}
}

func TestParseMapListBody(t *testing.T) {
	prog := parseProgram(t, "names = map &students [ &first_name ];")

	body := prog.Bindings()[0].Value.Body
	if body.Type != types.NodeBodyList {
		t.Fatalf("got %s, want body-list", body.Type)
	}
	if len(body.Items) != 1 {
		t.Errorf("got %d body items, want 1", len(body.Items))
	}
}

func TestParseBodyErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code types.ErrorCode
	}{
		{"empty list body", "x = map &a [];", types.ErrEmptyBody},
		{"missing map body", "x = map &a;", types.ErrMissingBody},
		{"missing bind body", "x = bind &a;", types.ErrMissingBody},
		{"zip body not a block", "x = zip &a &b;", types.ErrMissingBody},
		{"zip without sources", "x = zip { v = 1; };", types.ErrNoSources},
		{"zip empty list body", "x = zip &a [];", types.ErrEmptyBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(t, tt.src)
			if err.Code != tt.code {
				t.Errorf("got %s, want %s", err.Code, tt.code)
			}
		})
	}
}

func TestParseZip(t *testing.T) {
	t.Run("two references and object body", func(t *testing.T) {
		prog := parseProgram(t, "pairs = zip &firsts &lasts { f = &?.0; l = &?.1; };")
		node := prog.Bindings()[0].Value
		if node.Type != types.NodeZip {
			t.Fatalf("got %s, want zip", node.Type)
		}
		if len(node.Sources) != 2 {
			t.Errorf("got %d sources, want 2", len(node.Sources))
		}
		if node.Body.Type != types.NodeBodyObject {
			t.Errorf("body: got %s, want body-object", node.Body.Type)
		}
	})

	t.Run("list literals as sources, final list is the body", func(t *testing.T) {
		prog := parseProgram(t, `nums = zip [1,2] ["one","two"] [ &?.0 ];`)
		node := prog.Bindings()[0].Value
		if len(node.Sources) != 2 {
			t.Fatalf("got %d sources, want 2", len(node.Sources))
		}
		for i, src := range node.Sources {
			if src.Type != types.NodeList {
				t.Errorf("source %d: got %s, want list", i, src.Type)
			}
		}
		if node.Body.Type != types.NodeBodyList {
			t.Errorf("body: got %s, want body-list", node.Body.Type)
		}
	})
}

func TestParseNestedScopes(t *testing.T) {
	prog := parseProgram(t, `
		result = bind &outer {
			inner = map &items [ &name ];
		};
	`)

	bindNode := prog.Bindings()[0].Value
	if bindNode.Type != types.NodeBind {
		t.Fatalf("got %s, want bind", bindNode.Type)
	}
	mapNode := bindNode.Body.Entries[0].Value
	if mapNode.Type != types.NodeMap {
		t.Fatalf("inner: got %s, want map", mapNode.Type)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code types.ErrorCode
	}{
		{"empty program", "", types.ErrSyntax},
		{"missing assignment", "x 1;", types.ErrExpectedToken},
		{"missing expression", "x = ;", types.ErrSyntax},
		{"unterminated object", "x = { a = 1;", types.ErrExpectedToken},
		{"unterminated list", "x = [1, 2", types.ErrExpectedToken},
		{"binding name is not a name", "1 = 2;", types.ErrExpectedToken},
		{"dot without step", "x = &a.;", types.ErrExpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(t, tt.src)
			if err.Code != tt.code {
				t.Errorf("got %s, want %s", err.Code, tt.code)
			}
			if err.Line == 0 {
				t.Errorf("error has no source position: %+v", err)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	err := parseError(t, "x = 1;\ny = ;")
	if err.Line != 2 || err.Column != 5 {
		t.Errorf("position: got line %d column %d, want line 2 column 5", err.Line, err.Column)
	}
}

func TestParseMaxDepth(t *testing.T) {
	src := "x = [[[[1]]]];"

	if _, err := Compile(src); err != nil {
		t.Fatalf("default depth: %v", err)
	}

	_, err := Compile(src, WithMaxDepth(2))
	var jmErr *types.Error
	if !errors.As(err, &jmErr) || jmErr.Code != types.ErrTooDeep {
		t.Errorf("got %v, want %s", err, types.ErrTooDeep)
	}
}
