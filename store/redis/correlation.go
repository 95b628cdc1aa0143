package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/herald"
	"github.com/xraph/herald/correlation"
	"github.com/xraph/herald/internal/entity"
)

// correlationModel is the JSON representation stored in Redis.
type correlationModel struct {
	EntityID  string    `json:"entity_id"`
	ThreadID  string    `json:"thread_id"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCorrelationModel(e *correlation.Entry) *correlationModel {
	return &correlationModel{
		EntityID:  e.EntityID,
		ThreadID:  e.ThreadID,
		Source:    e.Source,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fromCorrelationModel(m *correlationModel) *correlation.Entry {
	return &correlation.Entry{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		EntityID: m.EntityID,
		ThreadID: m.ThreadID,
		Source:   m.Source,
	}
}

func (s *Store) GetCorrelation(ctx context.Context, entityID string) (*correlation.Entry, error) {
	var m correlationModel
	if err := s.getJSON(ctx, s.keys.correlation(entityID), &m); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", herald.ErrCorrelationNotFound, entityID)
		}
		return nil, fmt.Errorf("herald/redis: get correlation: %w", err)
	}
	return fromCorrelationModel(&m), nil
}

// PutCorrelation overwrites the entry. CreatedAt survives the overwrite when
// the previous value is readable; concurrent writers race and the last wins.
func (s *Store) PutCorrelation(ctx context.Context, e *correlation.Entry) error {
	m := toCorrelationModel(e)
	key := s.keys.correlation(m.EntityID)

	t := now()
	var prev correlationModel
	if err := s.getJSON(ctx, key, &prev); err == nil {
		m.CreatedAt = prev.CreatedAt
	} else if m.CreatedAt.IsZero() {
		m.CreatedAt = t
	}
	m.UpdatedAt = t

	if err := s.putJSON(ctx, key, m, 0); err != nil {
		return fmt.Errorf("herald/redis: put correlation: %w", err)
	}
	return nil
}

func (s *Store) DeleteCorrelation(ctx context.Context, entityID string) error {
	n, err := s.rdb.Del(ctx, s.keys.correlation(entityID)).Result()
	if err != nil {
		return fmt.Errorf("herald/redis: delete correlation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", herald.ErrCorrelationNotFound, entityID)
	}
	return nil
}
