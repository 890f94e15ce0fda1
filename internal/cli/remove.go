package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/fpstore/internal/querysql"
)

// RemoveOptions holds flags for the remove command.
type RemoveOptions struct {
	*RootOptions
	FingerprintID int64
	LocationID    int64
	MeasurementID int64
	All           bool
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove fingerprints with their measurements and readings",
		Long: `Remove fingerprints together with their measurements and readings.

Locations and maps are kept. Exactly one selector is required.

Example:
  fpstore remove --fingerprint 7
  fpstore remove --location 3
  fpstore remove --all`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.FingerprintID, "fingerprint", 0, "remove this fingerprint id")
	cmd.Flags().Int64Var(&opts.LocationID, "location", 0, "remove every fingerprint at this location id")
	cmd.Flags().Int64Var(&opts.MeasurementID, "measurement", 0, "remove the fingerprint owning this measurement id")
	cmd.Flags().BoolVar(&opts.All, "all", false, "remove every fingerprint")

	return cmd
}

func runRemove(opts *RemoveOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	set := 0
	for _, name := range []string{"fingerprint", "location", "measurement", "all"} {
		if cmd.Flags().Changed(name) {
			set++
		}
	}
	if set != 1 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument,
			"exactly one of --fingerprint, --location, --measurement or --all is required", nil)
	}

	var c querysql.Constraint
	switch {
	case cmd.Flags().Changed("fingerprint"):
		c = querysql.ByFingerprint(opts.FingerprintID)
	case cmd.Flags().Changed("location"):
		c = querysql.ByLocation(opts.LocationID)
	case cmd.Flags().Changed("measurement"):
		c = querysql.ByMeasurement(opts.MeasurementID)
	case !opts.All:
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, "--all=false selects nothing", nil)
	}
	// A zero id would silently widen the selector to every fingerprint.
	if !opts.All && c.IsAll() {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, "selector id must be positive", nil)
	}
	if err := c.Validate(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, "invalid selector", err)
	}

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	removed, err := st.Remove(cmd.Context(), c)
	if err != nil {
		return formatter.FailStore("failed to remove fingerprints", err)
	}
	formatter.VerboseLog("Remove %s: removed=%t", c, removed)
	return formatter.Success(removeResult{Constraint: c.String(), Removed: removed})
}
