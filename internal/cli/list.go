package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/fpstore/internal/model"
	"github.com/roach88/fpstore/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	LocationID    int64
	MeasurementID int64
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored fingerprints",
		Long: `List stored fingerprints ordered by id.

Example:
  fpstore list
  fpstore list --location 3
  fpstore list --measurement 12 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.LocationID, "location", 0, "only fingerprints recorded at this location id")
	cmd.Flags().Int64Var(&opts.MeasurementID, "measurement", 0, "only the fingerprint owning this measurement id")
	cmd.MarkFlagsMutuallyExclusive("location", "measurement")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.LocationID < 0 || opts.MeasurementID < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, "ids must not be negative", nil)
	}

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts.RootOptions, st)

	ctx := cmd.Context()
	var list []*model.Fingerprint
	switch {
	case opts.MeasurementID > 0:
		fp, err := st.GetByMeasurementID(ctx, opts.MeasurementID)
		switch {
		case store.IsNotFound(err):
			list = []*model.Fingerprint{}
		case err != nil:
			return formatter.FailStore("failed to list fingerprints", err)
		default:
			list = []*model.Fingerprint{fp}
		}
	case opts.LocationID > 0:
		list, err = st.GetByLocationID(ctx, opts.LocationID)
	default:
		list, err = st.GetAll(ctx)
	}
	if err != nil {
		return formatter.FailStore("failed to list fingerprints", err)
	}

	formatter.VerboseLog("Listed %d fingerprint(s)", len(list))
	return formatter.Success(fingerprintList(list))
}
