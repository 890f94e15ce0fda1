package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/fpstore/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	Database    string
	Driver      string // "sqlite3" | "sqlite"
	WritePolicy string // "single-writer" | "tx-isolation"
	EnvFile     string

	// Logger is built from --verbose before any subcommand runs.
	Logger *slog.Logger

	// OpIDs overrides the store's operation id generator (for testing).
	// If nil, the store uses UUIDv7Generator.
	OpIDs store.OpIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fpstore CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fpstore",
		Short: "fpstore - indoor positioning fingerprint store",
		Long: `Store and inspect indoor-positioning fingerprints.

A fingerprint binds a location to one measurement of WiFi, GSM and
Bluetooth readings. fpstore keeps them in a local SQLite database.

Configuration is read from flags, then FPSTORE_DB, FPSTORE_DRIVER and
FPSTORE_WRITE_POLICY (optionally loaded from a .env file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				format := opts.Format
				opts.Format = "text"
				return newFormatter(opts, cmd).Fail(ExitCommandError, ErrCodeInvalidArgument,
					fmt.Sprintf("invalid format %q: must be one of %v", format, ValidFormats), nil)
			}
			if err := resolveConfig(cmd, opts); err != nil {
				return newFormatter(opts, cmd).Fail(ExitCommandError, ErrCodeInvalidArgument, "invalid configuration", err)
			}
			if opts.Logger == nil {
				level := slog.LevelInfo
				if opts.Verbose {
					level = slog.LevelDebug
				}
				opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: level,
				}))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default "+DefaultDatabase+")")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", store.DriverSQLite3, "database driver (sqlite3|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.WritePolicy, "write-policy", store.SingleWriter.String(), "write serialization (single-writer|tx-isolation)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load (default "+DefaultEnvFile+" if present)")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newFormatter builds the formatter for a command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// openStore opens the configured database. Failures are reported through
// formatter and returned as command errors.
func openStore(opts *RootOptions, formatter *OutputFormatter) (*store.Store, error) {
	policy, err := store.ParseWritePolicy(opts.WritePolicy)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, "invalid --write-policy", err)
	}
	formatter.VerboseLog("Opening %s (driver %s, %s)", opts.Database, opts.Driver, policy)
	st, err := store.OpenWith(opts.Database, store.Options{
		Driver:      opts.Driver,
		WritePolicy: policy,
		Logger:      opts.Logger,
		OpIDs:       opts.OpIDs,
	})
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeOpenFailed, "failed to open database", err)
	}
	return st, nil
}

// closeStore closes st, logging failures.
func closeStore(opts *RootOptions, st *store.Store) {
	if err := st.Close(); err != nil && opts.Logger != nil {
		opts.Logger.Error("error closing database", "error", err)
	}
}
