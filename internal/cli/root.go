package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/octave/internal/config"
)

// Version is the CLI version reported by --version.
var Version = "0.1.0"

// RootOptions holds global flags for all commands and the state the root
// command prepares for them.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Set by the root command before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the OCTAVE CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "octave",
		Short: "OCTAVE - structured documents for agents and people",
		Long: `Read, validate, repair and write OCTAVE documents.

Lenient input is normalized to a single canonical form. Schemas declare
required fields and constraints; opt-in repairs fix what is safe to fix
and every correction is reported.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "config file path")

	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewEjectCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewAmendCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads the configuration and installs the logger. The default
// config file is optional; a path given with --config must exist.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	required := cmd.Flags().Changed("config")
	cfg, err := config.Load(o.ConfigPath, required)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	o.Config = cfg

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Logging, o.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid logging configuration", err)
	}
	o.Logger = logger
	return nil
}

// newLogger builds the stderr logger. Verbose forces debug level.
func newLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// settings returns the loaded configuration, or defaults when the root
// command did not run (commands constructed directly in tests).
func (o *RootOptions) settings() *config.Config {
	if o.Config == nil {
		o.Config = config.Default()
	}
	return o.Config
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}
