package store

import (
	"context"
	"fmt"

	"github.com/roach88/fpstore/internal/model"
	"github.com/roach88/fpstore/internal/querysql"
)

var (
	wifiColumns      = []string{"wifiReadingId", "bssid", "ssid", "rssi", "wepEnabled", "isInfrastructure"}
	gsmColumns       = []string{"gsmReadingId", "cellId", "areaId", "signalStrength", "MCC", "MNC", "networkName"}
	bluetoothColumns = []string{"bluetoothReadingId", "friendlyName", "bluetoothAddress", "majorDeviceClass", "minorDeviceClass"}
)

// insertBatch inserts readings through one prepared statement and returns the
// generated ids in input order. bind maps a reading onto the non-id columns.
func insertBatch(
	ctx context.Context,
	tx Execer,
	table string,
	columns []string,
	readings []model.Reading,
	bind func(model.Reading) ([]any, error),
) (ids []int64, err error) {
	if len(readings) == 0 {
		return []int64{}, nil
	}
	stmt, err := tx.PrepareContext(ctx, querysql.Insert(table, columns))
	if err != nil {
		return nil, fmt.Errorf("prepare insert %s: %w", table, err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close insert %s: %w", table, cerr)
		}
	}()

	ids = make([]int64, 0, len(readings))
	for i, r := range readings {
		args, err := bind(r)
		if err != nil {
			return nil, fmt.Errorf("insert %s[%d]: %w", table, i, err)
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return nil, fmt.Errorf("insert %s[%d]: %w", table, i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert %s[%d]: last insert id: %w", table, i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// WiFiTable stores access point readings.
type WiFiTable struct{}

var _ ReadingTable = WiFiTable{}

func (WiFiTable) Kind() model.ReadingKind { return model.KindWiFi }
func (WiFiTable) Table() string           { return "wifireading" }
func (WiFiTable) IDColumn() string        { return "wifiReadingId" }
func (WiFiTable) Columns() []string       { return querysql.Qualify("wifireading", wifiColumns...) }

func (WiFiTable) ParseRow(r Row, offset int) (model.Reading, error) {
	var (
		w   model.WiFiReading
		err error
	)
	if w.ID, err = r.Int64(offset); err != nil {
		return nil, fmt.Errorf("wifi reading id: %w", err)
	}
	if w.BSSID, err = r.String(offset + 1); err != nil {
		return nil, fmt.Errorf("wifi bssid: %w", err)
	}
	if w.SSID, err = r.String(offset + 2); err != nil {
		return nil, fmt.Errorf("wifi ssid: %w", err)
	}
	if w.RSSI, _, err = r.NullInt64(offset + 3); err != nil {
		return nil, fmt.Errorf("wifi rssi: %w", err)
	}
	if w.WEPEnabled, err = r.Bool(offset + 4); err != nil {
		return nil, fmt.Errorf("wifi wep: %w", err)
	}
	if w.Infrastructure, err = r.Bool(offset + 5); err != nil {
		return nil, fmt.Errorf("wifi infrastructure: %w", err)
	}
	return w, nil
}

func (t WiFiTable) InsertBatch(ctx context.Context, tx Execer, readings []model.Reading) ([]int64, error) {
	return insertBatch(ctx, tx, t.Table(), wifiColumns[1:], readings, func(r model.Reading) ([]any, error) {
		w, ok := r.(model.WiFiReading)
		if p, isPtr := r.(*model.WiFiReading); isPtr && p != nil {
			w, ok = *p, true
		}
		if !ok {
			return nil, fmt.Errorf("expected wifi reading, got %T", r)
		}
		return []any{
			w.BSSID,
			model.NormalizeText(w.SSID),
			w.RSSI,
			boolInt(w.WEPEnabled),
			boolInt(w.Infrastructure),
		}, nil
	})
}

// GSMTable stores cell tower readings.
type GSMTable struct{}

var _ ReadingTable = GSMTable{}

func (GSMTable) Kind() model.ReadingKind { return model.KindGSM }
func (GSMTable) Table() string           { return "gsmreading" }
func (GSMTable) IDColumn() string        { return "gsmReadingId" }
func (GSMTable) Columns() []string       { return querysql.Qualify("gsmreading", gsmColumns...) }

func (GSMTable) ParseRow(r Row, offset int) (model.Reading, error) {
	var (
		g   model.GSMReading
		err error
	)
	if g.ID, err = r.Int64(offset); err != nil {
		return nil, fmt.Errorf("gsm reading id: %w", err)
	}
	if g.CellID, err = r.String(offset + 1); err != nil {
		return nil, fmt.Errorf("gsm cell id: %w", err)
	}
	if g.AreaID, err = r.String(offset + 2); err != nil {
		return nil, fmt.Errorf("gsm area id: %w", err)
	}
	if g.SignalStrength, _, err = r.NullInt64(offset + 3); err != nil {
		return nil, fmt.Errorf("gsm signal strength: %w", err)
	}
	if g.MCC, err = r.String(offset + 4); err != nil {
		return nil, fmt.Errorf("gsm mcc: %w", err)
	}
	if g.MNC, err = r.String(offset + 5); err != nil {
		return nil, fmt.Errorf("gsm mnc: %w", err)
	}
	if g.NetworkName, err = r.String(offset + 6); err != nil {
		return nil, fmt.Errorf("gsm network name: %w", err)
	}
	return g, nil
}

func (t GSMTable) InsertBatch(ctx context.Context, tx Execer, readings []model.Reading) ([]int64, error) {
	return insertBatch(ctx, tx, t.Table(), gsmColumns[1:], readings, func(r model.Reading) ([]any, error) {
		g, ok := r.(model.GSMReading)
		if p, isPtr := r.(*model.GSMReading); isPtr && p != nil {
			g, ok = *p, true
		}
		if !ok {
			return nil, fmt.Errorf("expected gsm reading, got %T", r)
		}
		return []any{
			g.CellID,
			g.AreaID,
			g.SignalStrength,
			g.MCC,
			g.MNC,
			model.NormalizeText(g.NetworkName),
		}, nil
	})
}

// BluetoothTable stores discovered Bluetooth devices.
type BluetoothTable struct{}

var _ ReadingTable = BluetoothTable{}

func (BluetoothTable) Kind() model.ReadingKind { return model.KindBluetooth }
func (BluetoothTable) Table() string           { return "bluetoothreading" }
func (BluetoothTable) IDColumn() string        { return "bluetoothReadingId" }
func (BluetoothTable) Columns() []string {
	return querysql.Qualify("bluetoothreading", bluetoothColumns...)
}

func (BluetoothTable) ParseRow(r Row, offset int) (model.Reading, error) {
	var (
		b   model.BluetoothReading
		err error
	)
	if b.ID, err = r.Int64(offset); err != nil {
		return nil, fmt.Errorf("bluetooth reading id: %w", err)
	}
	if b.FriendlyName, err = r.String(offset + 1); err != nil {
		return nil, fmt.Errorf("bluetooth friendly name: %w", err)
	}
	if b.Address, err = r.String(offset + 2); err != nil {
		return nil, fmt.Errorf("bluetooth address: %w", err)
	}
	if b.MajorDeviceClass, err = r.String(offset + 3); err != nil {
		return nil, fmt.Errorf("bluetooth major class: %w", err)
	}
	if b.MinorDeviceClass, err = r.String(offset + 4); err != nil {
		return nil, fmt.Errorf("bluetooth minor class: %w", err)
	}
	return b, nil
}

func (t BluetoothTable) InsertBatch(ctx context.Context, tx Execer, readings []model.Reading) ([]int64, error) {
	return insertBatch(ctx, tx, t.Table(), bluetoothColumns[1:], readings, func(r model.Reading) ([]any, error) {
		b, ok := r.(model.BluetoothReading)
		if p, isPtr := r.(*model.BluetoothReading); isPtr && p != nil {
			b, ok = *p, true
		}
		if !ok {
			return nil, fmt.Errorf("expected bluetooth reading, got %T", r)
		}
		return []any{
			model.NormalizeText(b.FriendlyName),
			b.Address,
			b.MajorDeviceClass,
			b.MinorDeviceClass,
		}, nil
	})
}
