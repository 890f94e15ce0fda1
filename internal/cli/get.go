package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <fingerprint-id>",
		Short: "Show one fingerprint with all its readings",
		Long: `Show one fingerprint with its location, measurement and every reading.

Text output is YAML in the same shape "fpstore add" accepts, plus ids.

Example:
  fpstore get 7
  fpstore get 7 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runGet(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, fmt.Sprintf("invalid fingerprint id %q", arg), nil)
	}

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts, st)

	fp, err := st.GetByID(cmd.Context(), id)
	if err != nil {
		return formatter.FailStore(fmt.Sprintf("fingerprint %d", id), err)
	}
	return formatter.Success(fp)
}
