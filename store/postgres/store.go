package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/herald"
	"github.com/xraph/herald/correlation"
	"github.com/xraph/herald/id"
	"github.com/xraph/herald/record"
	heraldstore "github.com/xraph/herald/store"
)

// compile-time interface check
var _ heraldstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("herald/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: postgres: %w", herald.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Correlation Store ====================

func (s *Store) GetCorrelation(ctx context.Context, entityID string) (*correlation.Entry, error) {
	m := new(correlationModel)
	err := s.pg.NewSelect(m).
		Where("entity_id = $1", entityID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s", herald.ErrCorrelationNotFound, entityID)
		}
		return nil, err
	}
	return fromCorrelationModel(m), nil
}

// PutCorrelation upserts on entity_id. The row's created_at is left untouched
// on conflict.
func (s *Store) PutCorrelation(ctx context.Context, e *correlation.Entry) error {
	m := toCorrelationModel(e)
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	_, err := s.pg.NewInsert(m).
		OnConflict("(entity_id) DO UPDATE").
		Set("thread_id = EXCLUDED.thread_id").
		Set("source = EXCLUDED.source").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) DeleteCorrelation(ctx context.Context, entityID string) error {
	res, err := s.pg.NewDelete((*correlationModel)(nil)).
		Where("entity_id = $1", entityID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", herald.ErrCorrelationNotFound, entityID)
	}
	return nil
}

// ==================== Record Store ====================

func (s *Store) CreateRecord(ctx context.Context, r *record.Record) error {
	m := toRecordModel(r)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) UpdateRecord(ctx context.Context, r *record.Record) error {
	m := toRecordModel(r)
	m.UpdatedAt = time.Now().UTC()
	res, err := s.pg.NewUpdate(m).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", herald.ErrRecordNotFound, r.ID)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, recID id.ID) (*record.Record, error) {
	m := new(recordModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", recID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s", herald.ErrRecordNotFound, recID)
		}
		return nil, err
	}
	return fromRecordModel(m)
}

func (s *Store) ListRecords(ctx context.Context, opts record.ListOpts) ([]*record.Record, error) {
	var models []recordModel
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if opts.Source != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("source = $%d", argIdx), opts.Source)
	}
	if opts.EntityID != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("entity_id = $%d", argIdx), opts.EntityID)
	}
	if opts.State != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("state = $%d", argIdx), string(*opts.State))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*record.Record, len(models))
	for i := range models {
		r, err := fromRecordModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
