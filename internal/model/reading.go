package model

import "fmt"

// ReadingKind is the discriminator stored in readinginmeasurement.readingClassName.
type ReadingKind string

const (
	KindWiFi      ReadingKind = "wifi"
	KindGSM       ReadingKind = "gsm"
	KindBluetooth ReadingKind = "bluetooth"
)

// ReadingKinds lists every kind in the order the store joins and sorts them.
var ReadingKinds = []ReadingKind{KindBluetooth, KindGSM, KindWiFi}

// ParseReadingKind maps a stored discriminator back to a ReadingKind.
// Returns ok=false for empty or unknown values.
func ParseReadingKind(s string) (ReadingKind, bool) {
	switch ReadingKind(s) {
	case KindWiFi, KindGSM, KindBluetooth:
		return ReadingKind(s), true
	default:
		return "", false
	}
}

// Reading is a sealed interface over the three radio observation kinds.
// Only WiFiReading, GSMReading and BluetoothReading implement it.
type Reading interface {
	Kind() ReadingKind
	ReadingID() int64
	reading() // Sealed
}

// WiFiReading is one access point observation.
type WiFiReading struct {
	ID             int64  `json:"id" yaml:"id,omitempty"`
	BSSID          string `json:"bssid" yaml:"bssid"`
	SSID           string `json:"ssid" yaml:"ssid"`
	RSSI           int64  `json:"rssi" yaml:"rssi"`
	WEPEnabled     bool   `json:"wep_enabled" yaml:"wep_enabled"`
	Infrastructure bool   `json:"infrastructure" yaml:"infrastructure"`
}

func (WiFiReading) reading() {}

// Kind returns KindWiFi.
func (WiFiReading) Kind() ReadingKind {
	return KindWiFi
}

// ReadingID returns the stored id, 0 before insert.
func (r WiFiReading) ReadingID() int64 {
	return r.ID
}

func (r WiFiReading) String() string {
	return fmt.Sprintf("wifi %s (%s) %d dBm", r.BSSID, r.SSID, r.RSSI)
}

// GSMReading is one cell tower observation.
type GSMReading struct {
	ID             int64  `json:"id" yaml:"id,omitempty"`
	CellID         string `json:"cell_id" yaml:"cell_id"`
	AreaID         string `json:"area_id" yaml:"area_id"`
	SignalStrength int64  `json:"signal_strength" yaml:"signal_strength"`
	MCC            string `json:"mcc" yaml:"mcc"`
	MNC            string `json:"mnc" yaml:"mnc"`
	NetworkName    string `json:"network_name" yaml:"network_name"`
}

func (GSMReading) reading() {}

func (GSMReading) Kind() ReadingKind {
	return KindGSM
}

func (r GSMReading) ReadingID() int64 {
	return r.ID
}

func (r GSMReading) String() string {
	return fmt.Sprintf("gsm %s/%s %s", r.AreaID, r.CellID, r.NetworkName)
}

// BluetoothReading is one discovered Bluetooth device.
type BluetoothReading struct {
	ID               int64  `json:"id" yaml:"id,omitempty"`
	Address          string `json:"address" yaml:"address"`
	FriendlyName     string `json:"friendly_name" yaml:"friendly_name"`
	MajorDeviceClass string `json:"major_device_class" yaml:"major_device_class"`
	MinorDeviceClass string `json:"minor_device_class" yaml:"minor_device_class"`
}

func (BluetoothReading) reading() {}

func (BluetoothReading) Kind() ReadingKind {
	return KindBluetooth
}

func (r BluetoothReading) ReadingID() int64 {
	return r.ID
}

func (r BluetoothReading) String() string {
	return fmt.Sprintf("bluetooth %s (%s)", r.Address, r.FriendlyName)
}
