package parser

import (
	"errors"
	"testing"

	"github.com/sandrolain/jsonmap/pkg/types"
)

// FuzzParse checks that arbitrary input never panics the parser and that
// every failure is reported as a structured *types.Error.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"",
		"speaker = &actor; message = &line;",
		`"stringified lhs": &!first."name",`,
		"my_fav = &fruits.1;",
		"classes = map &schedule { subject = &class; };",
		"names = map &students [ &first_name ];",
		`nums = zip [1,2,3] ["one","two","three"] { v = &?.0; n = &?.1; };`,
		"x = bind &a.b { y = &c; };",
		"x = { a = 1, b = 2 };",
		"x = [null, 1.4, \"hello\", &bar, [0, 1, 2], {whiz = &bang}];",
		"x = &?.-10;",
		"cell = &matrix.0.1;",
		"x = // comment\n1;",
		`x = "é😀";`,
		"x = zip &a &b;",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		prog, err := Parse(src)
		if err != nil {
			var jmErr *types.Error
			if !errors.As(err, &jmErr) {
				t.Fatalf("Parse(%q): error is %T, want *types.Error: %v", src, err, err)
			}
			return
		}
		if prog == nil || prog.AST() == nil {
			t.Fatalf("Parse(%q): nil program without error", src)
		}
	})
}
