package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/transmute/internal/pipeline"
	"github.com/roach88/transmute/internal/tflib"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Keywords []string // key=value pairs
}

// RunResult is the outcome of one pipeline call.
type RunResult struct {
	Transform string          `json:"transform"`
	Args      []string        `json:"args"`
	Output    pipeline.Output `json:"output"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file> <handle> [values...]",
		Short: "Compile one transform and call it",
		Long: `Compile the transform named by handle against the built-in function
library and call it once.

Values are read as YAML scalars, so 365 is a number, ~ is null and
anything else is a string. One value is passed as a scalar, several as
positional arguments. --kw passes values by input name instead
({Node}_{Prop}, see the args line of the output).

Examples:
  transmute run specs/transforms.yaml age_days_to_years 3650
  transmute run specs/transforms.yaml fullname_to_fmlnames "Jane Q Public"
  transmute run specs/transforms.yaml sample_uuid --kw sample_study_id=phs001 --kw sample_sample_id=S1`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, args[0], args[1], args[2:], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Keywords, "kw", nil, "keyword input as key=value (repeatable)")

	return cmd
}

func runPipeline(opts *RunOptions, path, handle string, values []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if len(opts.Keywords) > 0 && len(values) > 0 {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "positional values and --kw are mutually exclusive", nil)
	}
	input, err := buildInput(values, opts.Keywords)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	loaded, err := loadOrFail(formatter, opts.RootOptions, path)
	if err != nil {
		return err
	}
	tf, ok := loaded.Set.Get(handle)
	if !ok {
		return formatter.fail(ExitCommandError, ErrCodeUnknownHandle,
			fmt.Sprintf("no transform with handle %q", handle), loaded.Set.Handles())
	}

	compiler := pipeline.NewCompiler(tflib.NewRegistry(), pipeline.WithLogger(opts.logger()))
	p, err := compiler.Compile(tf)
	if err != nil {
		code, msg := ErrorCode(err)
		return formatter.fail(ExitCommandError, code, msg, nil)
	}
	formatter.VerboseLog("Compiled %s: args %v, results %v (%s)", handle, p.ArgNames(), p.ResultNames(), p.Kind())

	out, err := p.Call(input)
	if err != nil {
		code, msg := ErrorCode(err)
		if code == ErrCodeGeneric {
			code = ErrCodeCallFailed
		}
		return formatter.fail(ExitFailure, code, msg, nil)
	}

	if formatter.JSON() {
		return formatter.Success(RunResult{Transform: handle, Args: p.ArgNames(), Output: out})
	}
	w := formatter.Writer
	if out.Multiple() {
		for _, name := range out.Names() {
			v, _ := out.Get(name)
			fmt.Fprintf(w, "%s: %s\n", name, formatValue(v))
		}
		return nil
	}
	fmt.Fprintln(w, formatValue(out.Value()))
	return nil
}

// buildInput turns CLI values into a pipeline input.
func buildInput(values, keywords []string) (pipeline.Input, error) {
	if len(keywords) > 0 {
		kw := make(map[string]any, len(keywords))
		for _, pair := range keywords {
			key, raw, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return pipeline.Input{}, fmt.Errorf("invalid --kw %q: expected key=value", pair)
			}
			v, err := parseValue(raw)
			if err != nil {
				return pipeline.Input{}, err
			}
			kw[key] = v
		}
		return pipeline.Keywords(kw), nil
	}

	parsed := make([]any, len(values))
	for i, s := range values {
		v, err := parseValue(s)
		if err != nil {
			return pipeline.Input{}, err
		}
		parsed[i] = v
	}
	switch len(parsed) {
	case 0:
		return pipeline.Scalar(nil), nil
	case 1:
		return pipeline.Scalar(parsed[0]), nil
	}
	return pipeline.Positional(parsed...), nil
}

// parseValue reads s as a YAML scalar. Collections stay strings.
func parseValue(s string) (any, error) {
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(s), &n); err != nil {
		return s, nil
	}
	if len(n.Content) != 1 || n.Content[0].Kind != yaml.ScalarNode {
		return s, nil
	}
	var v any
	if err := n.Content[0].Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, nil
}

// formatValue prints strings bare and everything else as JSON.
func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
