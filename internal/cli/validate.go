package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/transmute/internal/pipeline"
	"github.com/roach88/transmute/internal/tflib"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Handles []string `json:"handles"`
	Errors  []Issue  `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a transform specification",
		Long: `Validate a transform specification document.

Checks the document against the schema, normalizes every identity and
transform, and resolves every step against the built-in function
library. Nothing is written.

With --collect-all every failing entry is reported instead of only the
first one.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadTransforms(opts, path)
	if err != nil {
		if isDocumentError(err) {
			code, msg := ErrorCode(err)
			return formatter.fail(ExitCommandError, code, msg, nil)
		}
		return outputValidationErrors(formatter, nil, []Issue{NewIssue(err)})
	}

	var issues []Issue
	for _, e := range loaded.Errors {
		issues = append(issues, NewIssue(e))
	}

	registry := tflib.NewRegistry()
	formatter.VerboseLog("Resolving steps against %d library function(s)", registry.Count())
	compiler := pipeline.NewCompiler(registry, pipeline.WithLogger(opts.logger()))
	for _, nt := range loaded.Set.All() {
		formatter.VerboseLog("Resolving %s", nt.Handle)
		if _, err := compiler.Compile(nt.Transform); err != nil {
			issue := NewIssue(err)
			issue.Handle = nt.Handle
			issues = append(issues, issue)
			if !opts.CollectAll {
				break
			}
		}
	}

	handles := loaded.Set.Handles()
	if len(issues) > 0 {
		return outputValidationErrors(formatter, handles, issues)
	}
	return outputValidateSuccess(formatter, handles)
}

func outputValidateSuccess(formatter *OutputFormatter, handles []string) error {
	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Handles: handles})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d transform(s) valid\n", len(handles))
	for _, h := range handles {
		fmt.Fprintf(formatter.Writer, "  %s\n", h)
	}
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, handles []string, issues []Issue) error {
	exit := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))

	if formatter.JSON() {
		if handles == nil {
			handles = []string{}
		}
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Handles: handles, Errors: issues},
			Error:  &CLIError{Code: issues[0].Code, Message: issues[0].Message},
		}); err != nil {
			return err
		}
		return exit
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		switch {
		case issue.Line > 0 && issue.Column > 0:
			fmt.Fprintf(formatter.Writer, "line %d, column %d\n", issue.Line, issue.Column)
		case issue.Line > 0:
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}
	if len(handles) > 0 {
		fmt.Fprintf(formatter.Writer, "%d transform(s) normalized\n", len(handles))
	}
	return exit
}
