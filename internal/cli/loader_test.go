package cli

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fpstore/internal/model"
)

func newTestLoader(t *testing.T) *DocumentLoader {
	t.Helper()
	loader, err := NewDocumentLoader()
	require.NoError(t, err)
	return loader
}

func requireLoadError(t *testing.T, err error, code string) *LoadError {
	t.Helper()
	require.Error(t, err)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr), "expected *LoadError, got %T", err)
	assert.Equal(t, code, loadErr.Code)
	return loadErr
}

func TestLoadFile_MultipleDocuments(t *testing.T) {
	docs, err := newTestLoader(t).LoadFile(filepath.Join("testdata", "fingerprints.yaml"))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	first := docs[0]
	assert.Zero(t, first.ID)
	assert.Equal(t, "lab-1", first.Location.SymbolicID)
	require.NotNil(t, first.Location.Map)
	assert.Equal(t, "Floor 1", first.Location.Map.Name)
	assert.Equal(t, int64(120), first.Location.MapX)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), first.Measurement.Timestamp)
	require.Len(t, first.Measurement.WiFi, 2)
	assert.Equal(t, model.WiFiReading{BSSID: "00:11:22:33:44:55", SSID: "corp", RSSI: -48, Infrastructure: true}, first.Measurement.WiFi[0])
	assert.True(t, first.Measurement.WiFi[1].WEPEnabled)
	require.Len(t, first.Measurement.GSM, 1)
	assert.Equal(t, "Swisscom", first.Measurement.GSM[0].NetworkName)
	require.Len(t, first.Measurement.Bluetooth, 1)
	assert.Equal(t, 4, first.Measurement.Len())

	second := docs[1]
	assert.Nil(t, second.Location.Map)
	assert.Len(t, second.Measurement.WiFi, 1)
	assert.NotNil(t, second.Measurement.GSM)
	assert.Empty(t, second.Measurement.GSM)
	assert.NotNil(t, second.Measurement.Bluetooth)
}

func TestLoad_ExistingLocationByID(t *testing.T) {
	docs, err := newTestLoader(t).Load([]byte(`
location: {id: 4}
measurement:
  timestamp: 2024-03-01T10:00:00Z
`))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, int64(4), docs[0].Location.ID)
	assert.Zero(t, docs[0].Measurement.Len())
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown_field", `
location: {symbolic_id: a, floor: 2}
measurement:
  timestamp: 2024-03-01T10:00:00Z
`},
		{"missing_bssid", `
location: {symbolic_id: a}
measurement:
  timestamp: 2024-03-01T10:00:00Z
  wifi: [{ssid: corp, rssi: -40}]
`},
		{"positive_rssi", `
location: {symbolic_id: a}
measurement:
  timestamp: 2024-03-01T10:00:00Z
  wifi: [{bssid: "00:11", rssi: 12}]
`},
		{"missing_measurement", `
location: {symbolic_id: a}
`},
		{"bad_timestamp", `
location: {symbolic_id: a}
measurement: {timestamp: yesterday}
`},
		{"negative_location_id", `
location: {id: -1}
measurement:
  timestamp: 2024-03-01T10:00:00Z
`},
	}

	loader := newTestLoader(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load([]byte(tt.doc))
			loadErr := requireLoadError(t, err, ErrCodeInvalidDocument)
			assert.Equal(t, 1, loadErr.Document)
		})
	}
}

func TestLoad_ReportsFailingDocument(t *testing.T) {
	_, err := newTestLoader(t).Load([]byte(`
location: {symbolic_id: a}
measurement:
  timestamp: 2024-03-01T10:00:00Z
---
location: {symbolic_id: b}
measurement:
  timestamp: 2024-03-01T10:00:00Z
  gsm: [{area_id: "7"}]
`))
	loadErr := requireLoadError(t, err, ErrCodeInvalidDocument)
	assert.Equal(t, 2, loadErr.Document)
	assert.Contains(t, loadErr.Error(), "document 2")
}

func TestLoad_NoDocuments(t *testing.T) {
	_, err := newTestLoader(t).Load([]byte(""))
	requireLoadError(t, err, ErrCodeNoDocuments)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := newTestLoader(t).Load([]byte("location: [unclosed\n"))
	requireLoadError(t, err, ErrCodeInvalidDocument)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := newTestLoader(t).LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	requireLoadError(t, err, ErrCodeNotFound)
}
