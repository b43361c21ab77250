package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/transmute/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult is the canonical form of a document. Hashes maps each
// handle to the content hash of its transform; transforms that differ only
// in handle share a hash.
type CompilationResult struct {
	Transforms *ir.TransformSet  `json:"transforms"`
	Hashes     map[string]string `json:"hashes"`
	Skipped    []Issue           `json:"skipped,omitempty"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	TransformCount int
	IdentityCount  int
	StepCount      int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Normalize a specification to canonical transforms",
		Long: `Normalize a transform specification and emit the canonical transforms.

Every shorthand is expanded and every default resolved, so the output
names model, version, node and props of each endpoint and the package of
each step explicitly.

Examples:
  transmute compile specs/transforms.yaml
  transmute compile specs/transforms.yaml -o transforms.json
  transmute compile --defaults defaults.yaml specs/partial.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := loadOrFail(formatter, opts.RootOptions, path)
	if err != nil {
		return err
	}

	result := &CompilationResult{Transforms: loaded.Set}
	for _, e := range loaded.Errors {
		result.Skipped = append(result.Skipped, NewIssue(e))
	}
	result.Hashes, err = hashTransforms(loaded.Set)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	for _, nt := range loaded.Set.All() {
		formatter.VerboseLog("Compiled %s: %d step(s), hash %s", nt.Handle, len(nt.Transform.Steps), result.Hashes[nt.Handle])
	}

	if opts.Output != "" {
		if err := writeTransformsToFile(loaded.Set, opts.Output); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, calculateStats(loaded.Set), opts.Output)
}

// hashTransforms computes the content hash of every transform in set.
func hashTransforms(set *ir.TransformSet) (map[string]string, error) {
	hashes := make(map[string]string, set.Len())
	for _, nt := range set.All() {
		h, err := ir.TransformHash(nt.Transform)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", nt.Handle, err)
		}
		hashes[nt.Handle] = h
	}
	return hashes, nil
}

// calculateStats computes summary statistics for a transform set.
func calculateStats(set *ir.TransformSet) CompilationStats {
	var stats CompilationStats
	for _, nt := range set.All() {
		stats.TransformCount++
		if nt.Transform.IsIdentity() {
			stats.IdentityCount++
		}
		stats.StepCount += len(nt.Transform.Steps)
	}
	return stats
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, stats CompilationStats, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d transform(s) (%d identity), %d step(s)\n\n",
		stats.TransformCount, stats.IdentityCount, stats.StepCount)

	for _, nt := range result.Transforms.All() {
		tf := nt.Transform
		fmt.Fprintf(w, "  %s [%s]\n", nt.Handle, tf.Kind)
		fmt.Fprintf(w, "    in:  %s\n", describe(tf.Inputs))
		fmt.Fprintf(w, "    out: %s\n", describe(tf.Outputs))
		for _, step := range tf.Steps {
			fmt.Fprintf(w, "    -> %s %s\n", step.Package, step.Entrypoint)
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped %d entr(ies):\n", len(result.Skipped))
		for _, issue := range result.Skipped {
			fmt.Fprintf(w, "  %s: %s\n", issue.Code, issue.Message)
		}
	}

	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote canonical transforms to %s\n", outputFile)
	}
	return nil
}

// writeTransformsToFile writes the set as indented JSON in document order.
func writeTransformsToFile(set *ir.TransformSet, filename string) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling transforms: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
