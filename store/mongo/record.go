package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/herald"
	"github.com/xraph/herald/id"
	"github.com/xraph/herald/record"
)

// CreateRecord persists a new dispatch record.
func (s *Store) CreateRecord(ctx context.Context, r *record.Record) error {
	m := toRecordModel(r)

	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("herald/mongo: create record: %w", err)
	}

	return nil
}

// UpdateRecord replaces an existing record.
func (s *Store) UpdateRecord(ctx context.Context, r *record.Record) error {
	m := toRecordModel(r)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("herald/mongo: update record: %w", err)
	}

	if res.MatchedCount() == 0 {
		return fmt.Errorf("%w: %s", herald.ErrRecordNotFound, r.ID)
	}

	return nil
}

// GetRecord returns a record by ID.
func (s *Store) GetRecord(ctx context.Context, recID id.ID) (*record.Record, error) {
	var m recordModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": recID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("%w: %s", herald.ErrRecordNotFound, recID)
		}

		return nil, fmt.Errorf("herald/mongo: get record: %w", err)
	}

	return fromRecordModel(&m)
}

// ListRecords returns records newest first.
func (s *Store) ListRecords(ctx context.Context, opts record.ListOpts) ([]*record.Record, error) {
	var models []recordModel

	filter := bson.M{}
	if opts.Source != "" {
		filter["source"] = opts.Source
	}
	if opts.EntityID != "" {
		filter["entity_id"] = opts.EntityID
	}
	if opts.State != nil {
		filter["state"] = string(*opts.State)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("herald/mongo: list records: %w", err)
	}

	result := make([]*record.Record, 0, len(models))
	for i := range models {
		r, err := fromRecordModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}

	return result, nil
}
