package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/herald"
	"github.com/xraph/herald/correlation"
)

// GetCorrelation returns the entry for entityID.
func (s *Store) GetCorrelation(ctx context.Context, entityID string) (*correlation.Entry, error) {
	var m correlationModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": entityID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("%w: %s", herald.ErrCorrelationNotFound, entityID)
		}

		return nil, fmt.Errorf("herald/mongo: get correlation: %w", err)
	}

	return fromCorrelationModel(&m), nil
}

// PutCorrelation upserts the entry; created_at is only written on insert.
func (s *Store) PutCorrelation(ctx context.Context, e *correlation.Entry) error {
	m := toCorrelationModel(e)
	t := now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = t
	}

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.EntityID}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"thread_id":  m.ThreadID,
				"source":     m.Source,
				"updated_at": t,
			},
			"$setOnInsert": bson.M{
				"created_at": m.CreatedAt,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("herald/mongo: put correlation: %w", err)
	}

	return nil
}

// DeleteCorrelation removes the entry for entityID.
func (s *Store) DeleteCorrelation(ctx context.Context, entityID string) error {
	res, err := s.mdb.NewDelete((*correlationModel)(nil)).
		Filter(bson.M{"_id": entityID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("herald/mongo: delete correlation: %w", err)
	}

	if res.DeletedCount() == 0 {
		return fmt.Errorf("%w: %s", herald.ErrCorrelationNotFound, entityID)
	}

	return nil
}
