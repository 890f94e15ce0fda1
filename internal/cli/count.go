package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/fpstore/internal/store"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	*RootOptions
	LocationID int64
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count stored fingerprints",
		Long: `Count stored fingerprints, optionally at one location.

A --location that is not a valid id prints "unknown" (JSON: known=false).

Example:
  fpstore count
  fpstore count --location 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.LocationID, "location", 0, "count fingerprints at this location id")

	return cmd
}

func runCount(opts *CountOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	ctx := cmd.Context()
	var (
		n      int
		result countResult
	)
	if cmd.Flags().Changed("location") {
		n, err = st.CountByLocation(ctx, opts.LocationID)
		result.LocationID = opts.LocationID
	} else {
		n, err = st.Count(ctx)
	}
	if err != nil {
		return formatter.FailStore("failed to count fingerprints", err)
	}

	result.Count = n
	result.Known = n != store.CountUnknown
	return formatter.Success(result)
}
