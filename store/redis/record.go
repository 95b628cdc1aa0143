package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/herald"
	"github.com/xraph/herald/id"
	"github.com/xraph/herald/internal/entity"
	"github.com/xraph/herald/record"
)

// recordModel is the JSON representation stored in Redis.
type recordModel struct {
	ID                string    `json:"id"`
	Source            string    `json:"source"`
	Kind              string    `json:"kind"`
	EntityID          string    `json:"entity_id"`
	State             string    `json:"state"`
	Error             string    `json:"error,omitempty"`
	MessageID         string    `json:"message_id,omitempty"`
	ThreadID          string    `json:"thread_id,omitempty"`
	Backfill          bool      `json:"backfill,omitempty"`
	Continuation      string    `json:"continuation"`
	ContinuationError string    `json:"continuation_error,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toRecordModel(r *record.Record) *recordModel {
	return &recordModel{
		ID:                r.ID.String(),
		Source:            r.Source,
		Kind:              r.Kind,
		EntityID:          r.EntityID,
		State:             string(r.State),
		Error:             r.Error,
		MessageID:         r.MessageID,
		ThreadID:          r.ThreadID,
		Backfill:          r.Backfill,
		Continuation:      string(r.Continuation),
		ContinuationError: r.ContinuationError,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func fromRecordModel(m *recordModel) (*record.Record, error) {
	recID, err := id.ParseDispatchID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse record ID %q: %w", m.ID, err)
	}
	return &record.Record{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                recID,
		Source:            m.Source,
		Kind:              m.Kind,
		EntityID:          m.EntityID,
		State:             record.State(m.State),
		Error:             m.Error,
		MessageID:         m.MessageID,
		ThreadID:          m.ThreadID,
		Backfill:          m.Backfill,
		Continuation:      record.ContinuationState(m.Continuation),
		ContinuationError: m.ContinuationError,
	}, nil
}

func (s *Store) CreateRecord(ctx context.Context, r *record.Record) error {
	m := toRecordModel(r)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
		m.UpdatedAt = m.CreatedAt
	}

	if err := s.putJSON(ctx, s.keys.record(m.ID), m, s.recordTTL); err != nil {
		return fmt.Errorf("herald/redis: create record: %w", err)
	}

	sc := score(m.CreatedAt)
	pipe := s.rdb.Pipeline()
	pipe.ZAdd(ctx, s.keys.recordIndex(), goredis.Z{Score: sc, Member: m.ID})
	if m.EntityID != "" {
		pipe.ZAdd(ctx, s.keys.entityIndex(m.EntityID), goredis.Z{Score: sc, Member: m.ID})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("herald/redis: create record indexes: %w", err)
	}
	return nil
}

func (s *Store) UpdateRecord(ctx context.Context, r *record.Record) error {
	key := s.keys.record(r.ID.String())

	var existing recordModel
	if err := s.getJSON(ctx, key, &existing); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", herald.ErrRecordNotFound, r.ID)
		}
		return fmt.Errorf("herald/redis: update record: %w", err)
	}

	m := toRecordModel(r)
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = now()
	if err := s.putJSON(ctx, key, m, s.remainingTTL(ctx, key)); err != nil {
		return fmt.Errorf("herald/redis: update record: %w", err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, recID id.ID) (*record.Record, error) {
	var m recordModel
	if err := s.getJSON(ctx, s.keys.record(recID.String()), &m); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", herald.ErrRecordNotFound, recID)
		}
		return nil, fmt.Errorf("herald/redis: get record: %w", err)
	}
	return fromRecordModel(&m)
}

func (s *Store) ListRecords(ctx context.Context, opts record.ListOpts) ([]*record.Record, error) {
	index := s.keys.recordIndex()
	if opts.EntityID != "" {
		index = s.keys.entityIndex(opts.EntityID)
	}

	start, stop, ranged := indexRange(opts)
	ids, err := s.rdb.ZRevRange(ctx, index, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("herald/redis: list records: %w", err)
	}

	result := make([]*record.Record, 0, len(ids))
	var expired []any
	for _, recID := range ids {
		var m recordModel
		if err := s.getJSON(ctx, s.keys.record(recID), &m); err != nil {
			if isNotFound(err) {
				expired = append(expired, recID)
				continue
			}
			return nil, err
		}
		r, err := fromRecordModel(&m)
		if err != nil {
			return nil, err
		}
		if !opts.Matches(r) {
			continue
		}
		result = append(result, r)
	}

	if len(expired) > 0 {
		// Best effort: a failed prune only costs extra lookups next time.
		_ = s.rdb.ZRem(ctx, index, expired...).Err()
	}

	if ranged {
		// Expired members inside the window can make a short page; they are
		// pruned above so the next call sees the full window.
		return result, nil
	}
	return page(result, opts.Offset, opts.Limit), nil
}

// indexRange returns the ZREVRANGE bounds for opts. When every filter is
// answered by the index itself the window is applied by redis; otherwise
// the whole index is read and filtered in memory.
func indexRange(opts record.ListOpts) (start, stop int64, ranged bool) {
	if opts.Source != "" || opts.State != nil {
		return 0, -1, false
	}
	offset := max(opts.Offset, 0)
	if opts.Limit <= 0 {
		return int64(offset), -1, true
	}
	return int64(offset), int64(offset + opts.Limit - 1), true
}

// remainingTTL keeps an update from extending or clearing a record's expiry.
func (s *Store) remainingTTL(ctx context.Context, key string) time.Duration {
	if s.recordTTL <= 0 {
		return 0
	}
	ttl, err := s.rdb.PTTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return s.recordTTL
	}
	return ttl
}
