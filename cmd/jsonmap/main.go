// Command jsonmap applies a jsonmap program to a JSON document.
//
// It reads the input document from standard input and writes the translated
// document to standard output:
//
//	jsonmap mapping.jm < input.json > output.json
//
// On error the structured error message (with source position or evaluation
// path) is printed to standard error and the exit status is non-zero.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/profile"

	"github.com/sandrolain/jsonmap"
)

// CLI declares the command-line surface.
type CLI struct {
	Program string `arg:"" help:"Path to the jsonmap program file." type:"existingfile"`

	Input   string `help:"Input document format." enum:"json,yaml" default:"json"`
	Compact bool   `help:"Write output JSON on a single line."`
	Color   string `help:"Colorize error output." enum:"auto,always,never" default:"auto"`
	Profile string `help:"Write a profile for this run." enum:"off,cpu,mem" default:"off"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("jsonmap"),
		kong.Description("Transform a JSON document with a jsonmap program."),
		kong.UsageOnError(),
	)

	switch cli.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	if err := run(&cli, os.Stdin, os.Stdout); err != nil {
		fatalError(cli.Color, err)
	}
}

func run(cli *CLI, stdin io.Reader, stdout io.Writer) error {
	source, err := os.ReadFile(cli.Program)
	if err != nil {
		return err
	}

	input, err := decodeInput(cli.Input, stdin)
	if err != nil {
		return fmt.Errorf("cannot decode input document: %w", err)
	}

	result, err := jsonmap.Translate(string(source), input)
	if err != nil {
		return err
	}

	return writeOutput(stdout, result, cli.Compact)
}

// decodeInput reads the whole input document in the requested format and
// normalizes it to the jsonmap value model.
func decodeInput(format string, r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var input any
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &input); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, err
		}
	}
	return normalize(input), nil
}

// normalize converts decoder-specific value shapes (YAML integer types,
// map[any]any keys) to the nil/bool/float64/string/[]any/map[string]any
// model the evaluator expects.
func normalize(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = normalize(item)
		}
		return out
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case uint64:
		return float64(value)
	case float32:
		return float64(value)
	default:
		return value
	}
}

func writeOutput(w io.Writer, result any, compact bool) error {
	var out []byte
	var err error
	if compact {
		out, err = json.Marshal(result)
	} else {
		out, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// fatalError prints the error to stderr, colorized when appropriate, and
// exits with a non-zero status.
func fatalError(colorMode string, err error) {
	useColor := colorMode == "always" ||
		(colorMode == "auto" && isatty.IsTerminal(os.Stderr.Fd()))

	stderr := io.Writer(os.Stderr)
	if useColor {
		stderr = colorable.NewColorableStderr()
		fmt.Fprintf(stderr, "\x1b[31mjsonmap: %v\x1b[0m\n", err)
	} else {
		fmt.Fprintf(stderr, "jsonmap: %v\n", err)
	}
	os.Exit(1)
}
