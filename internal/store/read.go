package store

import (
	"context"

	"github.com/roach88/fpstore/internal/model"
	"github.com/roach88/fpstore/internal/querysql"
)

// CountUnknown is returned by the location counts when the location argument
// is absent or invalid.
const CountUnknown = -1

// Query streams the fingerprints matching c. The caller must Close the
// reader.
func (s *Store) Query(ctx context.Context, c querysql.Constraint) (*AggregateReader, error) {
	return s.query(ctx, "query", c)
}

func (s *Store) query(ctx context.Context, op string, c querysql.Constraint) (*AggregateReader, error) {
	sqlText, args, err := s.plan.selectSQL(c)
	if err != nil {
		return nil, &DatabaseError{Code: CodeQuery, Op: op, Err: err}
	}
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, newError(op, err)
	}
	return &AggregateReader{
		cur:    rows,
		tables: s.tables,
		plan:   s.plan,
		closer: rows.Close,
	}, nil
}

// get materializes every fingerprint matching c. A fault returns nil and the
// error, never a partial list.
func (s *Store) get(ctx context.Context, op string, c querysql.Constraint) ([]*model.Fingerprint, error) {
	r, err := s.query(ctx, op, c)
	if err != nil {
		return nil, err
	}
	defer s.closeReader(op, r)

	out := []*model.Fingerprint{}
	for r.Next() {
		out = append(out, r.Fingerprint())
	}
	if err := r.Err(); err != nil {
		return nil, newError(op, err)
	}
	return out, nil
}

func (s *Store) closeReader(op string, r *AggregateReader) {
	if err := r.Close(); err != nil {
		s.logger.Warn("close cursor failed", "op", op, "error", err)
	}
}

// GetAll returns every stored fingerprint ordered by id.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) GetAll(ctx context.Context) ([]*model.Fingerprint, error) {
	return s.get(ctx, "get all", querysql.All())
}

// GetByID returns the fingerprint with the given id.
// A non-positive or unknown id is a NotFound error.
func (s *Store) GetByID(ctx context.Context, id int64) (*model.Fingerprint, error) {
	const op = "get by id"
	if id <= 0 {
		return nil, notFound(op, "fingerprint %d", id)
	}
	list, err := s.get(ctx, op, querysql.ByFingerprint(id))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, notFound(op, "fingerprint %d", id)
	}
	return list[0], nil
}

// GetByLocationID returns the fingerprints recorded at a location.
// A non-positive id matches nothing.
func (s *Store) GetByLocationID(ctx context.Context, locationID int64) ([]*model.Fingerprint, error) {
	if locationID <= 0 {
		return []*model.Fingerprint{}, nil
	}
	return s.get(ctx, "get by location", querysql.ByLocation(locationID))
}

// GetByMeasurementID returns the fingerprint that owns a measurement.
func (s *Store) GetByMeasurementID(ctx context.Context, measurementID int64) (*model.Fingerprint, error) {
	const op = "get by measurement"
	if measurementID <= 0 {
		return nil, notFound(op, "measurement %d", measurementID)
	}
	list, err := s.get(ctx, op, querysql.ByMeasurement(measurementID))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, notFound(op, "measurement %d", measurementID)
	}
	return list[0], nil
}

// Count returns the number of stored fingerprints.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.count(ctx, "count", querysql.All())
}

// CountByLocation returns the number of fingerprints recorded at a location,
// or CountUnknown when locationID is not a valid id.
func (s *Store) CountByLocation(ctx context.Context, locationID int64) (int, error) {
	if locationID <= 0 {
		return CountUnknown, nil
	}
	return s.count(ctx, "count by location", querysql.ByLocation(locationID))
}

// CountForLocation is CountByLocation for a location value. A nil or
// unpersisted location yields CountUnknown.
func (s *Store) CountForLocation(ctx context.Context, loc *model.Location) (int, error) {
	if !loc.Persisted() {
		return CountUnknown, nil
	}
	return s.CountByLocation(ctx, loc.ID)
}

func (s *Store) count(ctx context.Context, op string, c querysql.Constraint) (int, error) {
	where, args, err := c.Compile(querysql.FingerprintTable)
	if err != nil {
		return 0, &DatabaseError{Code: CodeQuery, Op: op, Err: err}
	}
	var n int
	if err := s.db.QueryRowContext(ctx, querysql.Count(querysql.FingerprintTable, where), args...).Scan(&n); err != nil {
		return 0, newError(op, err)
	}
	return n, nil
}
