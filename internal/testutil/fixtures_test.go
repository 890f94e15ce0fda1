package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fpstore/internal/model"
)

func TestNewFingerprint_Counts(t *testing.T) {
	clock := NewDeterministicClock()
	fp := NewFingerprint(clock, NewLocation("lab-1"), Counts{WiFi: 3, GSM: 2, Bluetooth: 1})

	require.NotNil(t, fp.Measurement)
	assert.Len(t, fp.Measurement.WiFi, 3)
	assert.Len(t, fp.Measurement.GSM, 2)
	assert.Len(t, fp.Measurement.Bluetooth, 1)
	assert.Equal(t, 6, fp.Measurement.Len())
	assert.Equal(t, Epoch, fp.Measurement.Timestamp)
	assert.Zero(t, fp.ID)
	assert.False(t, fp.Location.Persisted())
}

func TestNewFingerprint_DistinctReadings(t *testing.T) {
	fp := NewFingerprint(NewDeterministicClock(), NewLocation("lab-1"), Counts{WiFi: 2})

	assert.NotEqual(t, fp.Measurement.WiFi[0].BSSID, fp.Measurement.WiFi[1].BSSID)
	assert.Equal(t, int64(-40), fp.Measurement.WiFi[0].RSSI)
}

func TestNewFingerprint_EmptyCollections(t *testing.T) {
	fp := NewFingerprint(NewDeterministicClock(), NewLocation("lab-1"), Counts{})

	assert.Equal(t, []model.WiFiReading{}, fp.Measurement.WiFi)
	assert.Equal(t, []model.GSMReading{}, fp.Measurement.GSM)
	assert.Equal(t, []model.BluetoothReading{}, fp.Measurement.Bluetooth)
}

func TestNewLocation(t *testing.T) {
	loc := NewLocation("hall")

	assert.Equal(t, "hall", loc.SymbolicID)
	require.NotNil(t, loc.Map)
	assert.Zero(t, loc.Map.ID)
}
