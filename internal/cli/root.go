package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/transmute/internal/normalize"
	"github.com/roach88/transmute/internal/telemetry"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Defaults   string // external default bundle file
	CollectAll bool   // keep going past failing entries

	// Logger is installed by the root command. Commands built on their
	// own (as in tests) fall back to a discarding logger.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Mode returns the normalization error mode selected by --collect-all.
func (o *RootOptions) Mode() normalize.Mode {
	if o.CollectAll {
		return normalize.CollectAll
	}
	return normalize.FailFast
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return telemetry.Discard()
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// NewRootCommand creates the root command for the transmute CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "transmute",
		Short: "transmute - data model transform compiler",
		Long: `Normalize transform specifications between data models, compile them
into callable pipelines and export them as a record graph.

Logging is configured by LOG_LEVEL (DEBUG|INFO|WARN|ERROR) and
LOG_FORMAT (json|text); --verbose forces DEBUG.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.Logger = telemetry.Setup(telemetry.Options{
				Verbose: opts.Verbose,
				Writer:  cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Defaults, "defaults", "", "external defaults file (Inputs/Outputs/Package)")
	cmd.PersistentFlags().BoolVar(&opts.CollectAll, "collect-all", false, "skip failing transforms and report every error")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
