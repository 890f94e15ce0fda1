package testutil

import (
	"fmt"

	"github.com/roach88/fpstore/internal/model"
)

// Counts is the number of readings per kind a fixture carries.
type Counts struct {
	WiFi      int
	GSM       int
	Bluetooth int
}

// NewLocation returns an unpersisted location on an unpersisted map.
func NewLocation(symbolicID string) *model.Location {
	return &model.Location{
		SymbolicID: symbolicID,
		Map:        &model.Map{Name: "Floor 1", URL: "https://maps.example.org/floor-1.png"},
		MapX:       120,
		MapY:       340,
		Accuracy:   3,
	}
}

// NewFingerprint builds an unpersisted fingerprint at loc whose measurement
// carries n readings of each kind, timestamped by clock. Reading values are
// derived from their index so round-trips can be compared field by field.
func NewFingerprint(clock *DeterministicClock, loc *model.Location, n Counts) *model.Fingerprint {
	m := model.NewMeasurement(clock.Next())
	for i := 0; i < n.WiFi; i++ {
		m.Add(model.WiFiReading{
			BSSID:          fmt.Sprintf("00:11:22:33:44:%02x", i),
			SSID:           fmt.Sprintf("ap-%d", i),
			RSSI:           int64(-40 - i),
			WEPEnabled:     i%2 == 1,
			Infrastructure: true,
		})
	}
	for i := 0; i < n.GSM; i++ {
		m.Add(model.GSMReading{
			CellID:         fmt.Sprintf("%d", 1000+i),
			AreaID:         "77",
			SignalStrength: int64(-70 - i),
			MCC:            "228",
			MNC:            "01",
			NetworkName:    "Swisscom",
		})
	}
	for i := 0; i < n.Bluetooth; i++ {
		m.Add(model.BluetoothReading{
			Address:          fmt.Sprintf("AA:BB:CC:DD:EE:%02x", i),
			FriendlyName:     fmt.Sprintf("beacon-%d", i),
			MajorDeviceClass: "phone",
			MinorDeviceClass: "smartphone",
		})
	}
	return &model.Fingerprint{Location: loc, Measurement: m}
}
