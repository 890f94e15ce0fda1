package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fpstore/internal/model"
)

// fakeCursor replays synthetic join rows. When failAt >= 0, Next fails with
// failErr once failAt rows have been consumed.
type fakeCursor struct {
	rows    []Row
	pos     int
	failAt  int
	failErr error
	err     error
	nexts   int
	scans   int
}

func newFakeCursor(rows ...Row) *fakeCursor {
	return &fakeCursor{rows: rows, failAt: -1}
}

func (c *fakeCursor) Next() bool {
	c.nexts++
	if c.failAt >= 0 && c.pos >= c.failAt {
		c.err = c.failErr
		return false
	}
	if c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Scan(dest ...any) error {
	c.scans++
	row := c.rows[c.pos-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		*(d.(*any)) = row[i]
	}
	return nil
}

func (c *fakeCursor) Err() error { return c.err }

// rowBuilder lays out synthetic rows in the default join layout.
type rowBuilder struct {
	plan *joinPlan
}

func newRowBuilder() rowBuilder {
	return rowBuilder{plan: newJoinPlan(DefaultTables())}
}

// head returns a row carrying only the scalar columns.
func (b rowBuilder) head(fpID, locID, measID int64) Row {
	row := make(Row, b.plan.width())
	row[0] = fpID
	lo := b.plan.locationOffset
	row[lo] = locID
	row[lo+1] = "room-" + string(rune('A'+locID-1))
	row[lo+3] = int64(10)
	row[lo+4] = int64(20)
	row[lo+5] = int64(2)
	mo := b.plan.measurementOffset
	row[mo] = measID
	row[mo+1] = int64(1709283600000)
	return row
}

func (b rowBuilder) wifi(fpID, locID, measID, readingID int64, bssid string) Row {
	row := b.head(fpID, locID, measID)
	row[b.plan.kindOffset] = "wifi"
	o := b.plan.readingOffsets[model.KindWiFi]
	row[o] = readingID
	row[o+1] = bssid
	row[o+2] = "corp"
	row[o+3] = int64(-55)
	row[o+4] = int64(0)
	row[o+5] = int64(1)
	return row
}

func (b rowBuilder) gsm(fpID, locID, measID, readingID int64, cellID string) Row {
	row := b.head(fpID, locID, measID)
	row[b.plan.kindOffset] = "gsm"
	o := b.plan.readingOffsets[model.KindGSM]
	row[o] = readingID
	row[o+1] = cellID
	row[o+2] = "77"
	row[o+3] = int64(-80)
	row[o+4] = "228"
	row[o+5] = "01"
	row[o+6] = "Swisscom"
	return row
}

func (b rowBuilder) bluetooth(fpID, locID, measID, readingID int64, addr string) Row {
	row := b.head(fpID, locID, measID)
	row[b.plan.kindOffset] = "bluetooth"
	o := b.plan.readingOffsets[model.KindBluetooth]
	row[o] = readingID
	row[o+1] = "beacon"
	row[o+2] = addr
	row[o+3] = "phone"
	row[o+4] = "smartphone"
	return row
}

func collect(t *testing.T, r *AggregateReader) []*model.Fingerprint {
	t.Helper()
	var out []*model.Fingerprint
	for r.Next() {
		fp := r.Fingerprint()
		require.NotNil(t, fp)
		out = append(out, fp)
	}
	return out
}

func TestAggregateReader_EmptyCursor(t *testing.T) {
	cur := newFakeCursor()
	r := NewAggregateReader(cur, DefaultTables())

	assert.False(t, r.Next())
	assert.NoError(t, r.Err())
	assert.Nil(t, r.Fingerprint())
	assert.Equal(t, 0, cur.scans, "nothing to parse")

	// Stays exhausted without touching the cursor again
	assert.False(t, r.Next())
	assert.Equal(t, 1, cur.nexts)
}

func TestAggregateReader_OneRowPerFingerprint(t *testing.T) {
	b := newRowBuilder()
	cur := newFakeCursor(
		b.head(1, 1, 10),
		b.head(2, 1, 11),
		b.head(3, 2, 12),
	)
	r := NewAggregateReader(cur, DefaultTables())

	got := collect(t, r)
	require.NoError(t, r.Err())
	require.Len(t, got, 3)

	for i, fp := range got {
		assert.Equal(t, int64(i+1), fp.ID)
		require.NotNil(t, fp.Location)
		require.NotNil(t, fp.Measurement)
		assert.NotNil(t, fp.Measurement.WiFi)
		assert.NotNil(t, fp.Measurement.GSM)
		assert.NotNil(t, fp.Measurement.Bluetooth)
		assert.Equal(t, 0, fp.Measurement.Len())
	}
	assert.Equal(t, int64(2), got[2].Location.ID)
	assert.Nil(t, got[0].Location.Map, "NULL mapId means no map")
}

func TestAggregateReader_GroupsReadings(t *testing.T) {
	b := newRowBuilder()
	cur := newFakeCursor(
		b.bluetooth(1, 1, 10, 7, "AA:00"),
		b.gsm(1, 1, 10, 3, "1001"),
		b.wifi(1, 1, 10, 1, "00:01"),
		b.wifi(1, 1, 10, 2, "00:02"),
		b.head(2, 1, 11),
		b.wifi(3, 2, 12, 5, "00:05"),
	)
	r := NewAggregateReader(cur, DefaultTables())

	got := collect(t, r)
	require.NoError(t, r.Err())
	require.Len(t, got, 3)

	first := got[0].Measurement
	assert.Equal(t, int64(10), first.ID)
	require.Len(t, first.WiFi, 2)
	assert.Equal(t, "00:01", first.WiFi[0].BSSID)
	assert.Equal(t, "00:02", first.WiFi[1].BSSID)
	require.Len(t, first.GSM, 1)
	assert.Equal(t, "1001", first.GSM[0].CellID)
	require.Len(t, first.Bluetooth, 1)
	assert.Equal(t, "AA:00", first.Bluetooth[0].Address)

	assert.Equal(t, 0, got[1].Measurement.Len())

	third := got[2].Measurement
	require.Len(t, third.WiFi, 1)
	assert.Equal(t, int64(5), third.WiFi[0].ID)
	assert.True(t, third.WiFi[0].Infrastructure)
	assert.False(t, third.WiFi[0].WEPEnabled)

	// Every row scanned exactly once; one final Next observes the end
	assert.Equal(t, 6, cur.scans)
	assert.Equal(t, 7, cur.nexts)
}

func TestAggregateReader_RowsPerFingerprintRatios(t *testing.T) {
	b := newRowBuilder()
	for _, perFP := range []int{1, 2, 5} {
		var rows []Row
		const fingerprints = 4
		for fp := int64(1); fp <= fingerprints; fp++ {
			for i := 0; i < perFP; i++ {
				rows = append(rows, b.wifi(fp, 1, 100+fp, fp*10+int64(i), "bssid"))
			}
		}
		r := NewAggregateReader(newFakeCursor(rows...), DefaultTables())

		got := collect(t, r)
		require.NoError(t, r.Err())
		require.Len(t, got, fingerprints, "rows per fingerprint = %d", perFP)
		for _, fp := range got {
			assert.Len(t, fp.Measurement.WiFi, perFP)
		}
	}
}

func TestAggregateReader_IgnoresUnknownAndNullDiscriminator(t *testing.T) {
	b := newRowBuilder()

	unknown := b.wifi(1, 1, 10, 1, "00:01")
	unknown[b.plan.kindOffset] = "infrared"

	nullReading := b.head(1, 1, 10)
	nullReading[b.plan.kindOffset] = "gsm" // junction row without a matching reading

	cur := newFakeCursor(unknown, nullReading, b.wifi(1, 1, 10, 2, "00:02"))
	r := NewAggregateReader(cur, DefaultTables())

	got := collect(t, r)
	require.NoError(t, r.Err())
	require.Len(t, got, 1)
	m := got[0].Measurement
	require.Len(t, m.WiFi, 1)
	assert.Equal(t, "00:02", m.WiFi[0].BSSID)
	assert.Empty(t, m.GSM)
}

func TestAggregateReader_UnregisteredKindAppendsNothing(t *testing.T) {
	b := newRowBuilder()
	tables := DefaultTables()
	tables.Readings = []ReadingTable{WiFiTable{}}

	// Rows laid out for the reduced table set
	plan := newJoinPlan(tables)
	row := make(Row, plan.width())
	copy(row, b.head(1, 1, 10)[:plan.kindOffset])
	row[plan.kindOffset] = "gsm"

	r := NewAggregateReader(newFakeCursor(row), tables)
	got := collect(t, r)
	require.NoError(t, r.Err())
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Measurement.Len())
}

func TestAggregateReader_FaultMidStream(t *testing.T) {
	b := newRowBuilder()
	cur := newFakeCursor(
		b.wifi(1, 1, 10, 1, "00:01"),
		b.wifi(1, 1, 10, 2, "00:02"),
		b.gsm(2, 1, 11, 1, "1001"),
		b.gsm(2, 1, 11, 2, "1002"),
		b.gsm(3, 1, 12, 3, "1003"),
	)
	cur.failAt = 4
	cur.failErr = errors.New("disk I/O error")

	r := NewAggregateReader(cur, DefaultTables())

	require.True(t, r.Next())
	first := r.Fingerprint()
	assert.Len(t, first.Measurement.WiFi, 2)

	// The in-progress aggregate is dropped, never emitted partially
	assert.False(t, r.Next())
	assert.Nil(t, r.Fingerprint())

	err := r.Err()
	require.Error(t, err)
	var de *DatabaseError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "read fingerprints", de.Op)
	assert.ErrorIs(t, err, cur.failErr)

	// Earlier aggregate is untouched
	assert.Len(t, first.Measurement.WiFi, 2)
	assert.False(t, r.Next())
}

func TestAggregateReader_ParseFault(t *testing.T) {
	b := newRowBuilder()
	bad := b.head(1, 1, 10)
	bad[b.plan.measurementOffset] = nil

	r := NewAggregateReader(newFakeCursor(bad), DefaultTables())
	assert.False(t, r.Next())
	assert.True(t, IsQueryError(r.Err()))
}

func TestAggregateReader_CloseIsIdempotent(t *testing.T) {
	calls := 0
	r := NewAggregateReader(newFakeCursor(), DefaultTables())
	r.closer = func() error {
		calls++
		return nil
	}

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, calls)
	assert.False(t, r.Next())
}
