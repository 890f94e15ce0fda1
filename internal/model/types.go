package model

import "time"

// Fingerprint binds one Location to one Measurement snapshot.
type Fingerprint struct {
	ID          int64        `json:"id" yaml:"id,omitempty"`
	Location    *Location    `json:"location" yaml:"location"`
	Measurement *Measurement `json:"measurement" yaml:"measurement"`
}

// Location is a position on a map. Locations outlive the fingerprints that
// reference them and may be shared between fingerprints.
type Location struct {
	ID         int64  `json:"id" yaml:"id,omitempty"`
	SymbolicID string `json:"symbolic_id" yaml:"symbolic_id"`
	Map        *Map   `json:"map,omitempty" yaml:"map,omitempty"`
	MapX       int64  `json:"map_x" yaml:"map_x"`
	MapY       int64  `json:"map_y" yaml:"map_y"`
	Accuracy   int64  `json:"accuracy" yaml:"accuracy"`
}

// Persisted reports whether the location already has a storage identity.
func (l *Location) Persisted() bool {
	return l != nil && l.ID > 0
}

// Map is the floor plan a Location is placed on.
type Map struct {
	ID   int64  `json:"id" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Measurement is one radio snapshot taken at a location.
// Reading order inside each collection is insertion order.
type Measurement struct {
	ID        int64              `json:"id" yaml:"id,omitempty"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
	WiFi      []WiFiReading      `json:"wifi" yaml:"wifi,omitempty"`
	GSM       []GSMReading       `json:"gsm" yaml:"gsm,omitempty"`
	Bluetooth []BluetoothReading `json:"bluetooth" yaml:"bluetooth,omitempty"`
}

// NewMeasurement returns a measurement with empty (non-nil) reading collections.
func NewMeasurement(ts time.Time) *Measurement {
	return &Measurement{
		Timestamp: ts,
		WiFi:      []WiFiReading{},
		GSM:       []GSMReading{},
		Bluetooth: []BluetoothReading{},
	}
}

// Add appends a reading to the collection matching its kind.
func (m *Measurement) Add(r Reading) {
	switch v := r.(type) {
	case WiFiReading:
		m.WiFi = append(m.WiFi, v)
	case *WiFiReading:
		m.WiFi = append(m.WiFi, *v)
	case GSMReading:
		m.GSM = append(m.GSM, v)
	case *GSMReading:
		m.GSM = append(m.GSM, *v)
	case BluetoothReading:
		m.Bluetooth = append(m.Bluetooth, v)
	case *BluetoothReading:
		m.Bluetooth = append(m.Bluetooth, *v)
	}
}

// ReadingsOf returns the readings of one kind, in collection order.
func (m *Measurement) ReadingsOf(kind ReadingKind) []Reading {
	var out []Reading
	switch kind {
	case KindWiFi:
		out = make([]Reading, 0, len(m.WiFi))
		for _, r := range m.WiFi {
			out = append(out, r)
		}
	case KindGSM:
		out = make([]Reading, 0, len(m.GSM))
		for _, r := range m.GSM {
			out = append(out, r)
		}
	case KindBluetooth:
		out = make([]Reading, 0, len(m.Bluetooth))
		for _, r := range m.Bluetooth {
			out = append(out, r)
		}
	}
	return out
}

// Readings returns every reading, grouped by kind in ReadingKinds order.
func (m *Measurement) Readings() []Reading {
	out := make([]Reading, 0, m.Len())
	for _, kind := range ReadingKinds {
		out = append(out, m.ReadingsOf(kind)...)
	}
	return out
}

// Len returns the total number of readings across all kinds.
func (m *Measurement) Len() int {
	return len(m.WiFi) + len(m.GSM) + len(m.Bluetooth)
}

// SetReadingIDs assigns ids to the readings of one kind, in collection order.
// Extra ids are ignored.
func (m *Measurement) SetReadingIDs(kind ReadingKind, ids []int64) {
	switch kind {
	case KindWiFi:
		for i := range m.WiFi {
			if i < len(ids) {
				m.WiFi[i].ID = ids[i]
			}
		}
	case KindGSM:
		for i := range m.GSM {
			if i < len(ids) {
				m.GSM[i].ID = ids[i]
			}
		}
	case KindBluetooth:
		for i := range m.Bluetooth {
			if i < len(ids) {
				m.Bluetooth[i].ID = ids[i]
			}
		}
	}
}

// ReadingIDs returns the ids of the readings of one kind, in collection order.
func (m *Measurement) ReadingIDs(kind ReadingKind) []int64 {
	readings := m.ReadingsOf(kind)
	ids := make([]int64, len(readings))
	for i, r := range readings {
		ids[i] = r.ReadingID()
	}
	return ids
}

// Clone returns a deep copy of the fingerprint.
func (f *Fingerprint) Clone() *Fingerprint {
	if f == nil {
		return nil
	}
	out := &Fingerprint{ID: f.ID}
	if f.Location != nil {
		loc := *f.Location
		if f.Location.Map != nil {
			m := *f.Location.Map
			loc.Map = &m
		}
		out.Location = &loc
	}
	if f.Measurement != nil {
		m := *f.Measurement
		m.WiFi = append([]WiFiReading(nil), f.Measurement.WiFi...)
		m.GSM = append([]GSMReading(nil), f.Measurement.GSM...)
		m.Bluetooth = append([]BluetoothReading(nil), f.Measurement.Bluetooth...)
		out.Measurement = &m
	}
	return out
}
