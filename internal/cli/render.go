package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/fpstore/internal/model"
)

// fingerprintList renders one line per fingerprint in text mode and as the
// full aggregates in JSON mode.
type fingerprintList []*model.Fingerprint

func (l fingerprintList) String() string {
	if len(l) == 0 {
		return "No fingerprints."
	}
	lines := make([]string, len(l))
	for i, fp := range l {
		lines[i] = summarize(fp)
	}
	return strings.Join(lines, "\n")
}

func summarize(fp *model.Fingerprint) string {
	m := fp.Measurement
	return fmt.Sprintf("fingerprint %d  location %d %q  measurement %d  %s  wifi=%d gsm=%d bluetooth=%d",
		fp.ID, fp.Location.ID, fp.Location.SymbolicID, m.ID,
		m.Timestamp.UTC().Format(time.RFC3339),
		len(m.WiFi), len(m.GSM), len(m.Bluetooth))
}

// countResult is the output of the count command.
type countResult struct {
	Count      int   `json:"count"`
	Known      bool  `json:"known"`
	LocationID int64 `json:"location_id,omitempty"`
}

func (r countResult) String() string {
	if !r.Known {
		return "unknown"
	}
	return fmt.Sprintf("%d", r.Count)
}

// addedFingerprint reports the ids one document was stored under.
type addedFingerprint struct {
	ID            int64 `json:"id"`
	LocationID    int64 `json:"location_id"`
	MeasurementID int64 `json:"measurement_id"`
	Readings      int   `json:"readings"`
}

type addResult []addedFingerprint

func (r addResult) String() string {
	lines := make([]string, len(r))
	for i, a := range r {
		lines[i] = fmt.Sprintf("Added fingerprint %d (location %d, measurement %d, %d readings)",
			a.ID, a.LocationID, a.MeasurementID, a.Readings)
	}
	return strings.Join(lines, "\n")
}

// removeResult is the output of the remove command.
type removeResult struct {
	Constraint string `json:"constraint"`
	Removed    bool   `json:"removed"`
}

func (r removeResult) String() string {
	if r.Removed {
		return "Removed fingerprints matching " + r.Constraint
	}
	return "No fingerprints matched " + r.Constraint
}
