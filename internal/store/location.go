package store

import (
	"context"
	"fmt"

	"github.com/roach88/fpstore/internal/model"
	"github.com/roach88/fpstore/internal/querysql"
)

// LocationTable stores locations and the map each one is placed on.
// The map is joined into the location's columns so a read returns both.
type LocationTable struct{}

var _ EntityTable[*model.Location] = LocationTable{}

var (
	locationColumns = []string{"locationId", "symbolicId", "mapId", "mapXcord", "mapYcord", "accuracy"}
	mapColumns      = []string{"mapName", "mapURL"}
)

func (LocationTable) Table() string    { return "location" }
func (LocationTable) IDColumn() string { return "locationId" }

// Columns returns the location columns followed by the joined map columns.
func (LocationTable) Columns() []string {
	cols := querysql.Qualify("location", locationColumns...)
	return append(cols, querysql.Qualify("map", mapColumns...)...)
}

// Joins implements Joiner.
func (LocationTable) Joins() []string {
	return []string{"LEFT OUTER JOIN map ON map.mapId = location.mapId"}
}

// ParseRow parses the location starting at offset. A NULL mapId yields a
// location without a map.
func (LocationTable) ParseRow(r Row, offset int) (*model.Location, error) {
	var (
		loc = &model.Location{}
		err error
	)
	if loc.ID, err = r.Int64(offset); err != nil {
		return nil, fmt.Errorf("location id: %w", err)
	}
	if loc.SymbolicID, err = r.String(offset + 1); err != nil {
		return nil, fmt.Errorf("location symbolic id: %w", err)
	}
	mapID, hasMap, err := r.NullInt64(offset + 2)
	if err != nil {
		return nil, fmt.Errorf("location map id: %w", err)
	}
	if loc.MapX, _, err = r.NullInt64(offset + 3); err != nil {
		return nil, fmt.Errorf("location x: %w", err)
	}
	if loc.MapY, _, err = r.NullInt64(offset + 4); err != nil {
		return nil, fmt.Errorf("location y: %w", err)
	}
	if loc.Accuracy, _, err = r.NullInt64(offset + 5); err != nil {
		return nil, fmt.Errorf("location accuracy: %w", err)
	}
	if hasMap {
		m := &model.Map{ID: mapID}
		if m.Name, err = r.String(offset + 6); err != nil {
			return nil, fmt.Errorf("map name: %w", err)
		}
		if m.URL, err = r.String(offset + 7); err != nil {
			return nil, fmt.Errorf("map url: %w", err)
		}
		loc.Map = m
	}
	return loc, nil
}

// Insert inserts the location and returns its generated id. A map without an
// id is inserted first and its id is set on loc.Map; a map with an id is
// referenced as is.
func (LocationTable) Insert(ctx context.Context, tx Execer, loc *model.Location) (int64, error) {
	var mapID any
	if loc.Map != nil {
		if loc.Map.ID <= 0 {
			res, err := tx.ExecContext(ctx, querysql.Insert("map", mapColumns),
				model.NormalizeText(loc.Map.Name),
				loc.Map.URL,
			)
			if err != nil {
				return 0, fmt.Errorf("insert map: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return 0, fmt.Errorf("insert map: last insert id: %w", err)
			}
			loc.Map.ID = id
		}
		mapID = loc.Map.ID
	}

	res, err := tx.ExecContext(ctx, querysql.Insert("location", locationColumns[1:]),
		model.NormalizeText(loc.SymbolicID),
		mapID,
		loc.MapX,
		loc.MapY,
		loc.Accuracy,
	)
	if err != nil {
		return 0, fmt.Errorf("insert location: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert location: last insert id: %w", err)
	}
	return id, nil
}
