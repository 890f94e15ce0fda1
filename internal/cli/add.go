package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <file.yaml>",
		Short: "Store fingerprints from a YAML file",
		Long: `Store fingerprints described in a YAML file.

The file holds one or more "---" separated documents. Every document is
validated against the fingerprint schema before anything is stored. Each
document is then added in its own transaction; a location with an id is
reused instead of inserted.

Example document:
  location:
    symbolic_id: lab-1
    map: {name: Floor 1, url: https://maps.example.org/floor-1.png}
    map_x: 120
    map_y: 340
  measurement:
    timestamp: 2024-03-01T09:00:00Z
    wifi:
      - {bssid: "00:11:22:33:44:55", ssid: corp, rssi: -48}
    gsm:
      - {cell_id: "1001", area_id: "77", signal_strength: -71}`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runAdd(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loader, err := NewDocumentLoader()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to load fingerprint schema", err)
	}
	docs, err := loader.LoadFile(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Error(), nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	formatter.VerboseLog("Loaded %d document(s) from %s", len(docs), path)

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(opts, st)

	result := make(addResult, 0, len(docs))
	for i, doc := range docs {
		fp, err := st.Add(cmd.Context(), doc)
		if err != nil {
			return formatter.FailStore(fmt.Sprintf("document %d not stored (%d stored before it)", i+1, len(result)), err)
		}
		result = append(result, addedFingerprint{
			ID:            fp.ID,
			LocationID:    fp.Location.ID,
			MeasurementID: fp.Measurement.ID,
			Readings:      fp.Measurement.Len(),
		})
	}
	return formatter.Success(result)
}
