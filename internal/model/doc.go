// Package model provides the fingerprint aggregate types shared by the store
// and the CLI.
//
// This package contains type definitions only. All other internal packages
// import model; model imports nothing internal.
//
// Key design constraints:
//   - A zero ID means "not yet persisted"
//   - Readings are a sealed variant: WiFiReading, GSMReading, BluetoothReading
//   - A Measurement belongs to exactly one Fingerprint; a Location may be shared
//   - All JSON and YAML tags use snake_case
package model
