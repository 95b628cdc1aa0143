package sqlite

import (
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/herald/correlation"
	"github.com/xraph/herald/id"
	"github.com/xraph/herald/internal/entity"
	"github.com/xraph/herald/record"
)

// --- Correlation models ---

type correlationModel struct {
	grove.BaseModel `grove:"table:herald_correlations"`

	EntityID  string    `grove:"entity_id,pk"`
	ThreadID  string    `grove:"thread_id"`
	Source    string    `grove:"source"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
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

// --- Record models ---

type recordModel struct {
	grove.BaseModel `grove:"table:herald_records"`

	ID                string    `grove:"id,pk"`
	Source            string    `grove:"source"`
	Kind              string    `grove:"kind"`
	EntityID          string    `grove:"entity_id"`
	State             string    `grove:"state"`
	Error             string    `grove:"error"`
	MessageID         string    `grove:"message_id"`
	ThreadID          string    `grove:"thread_id"`
	Backfill          bool      `grove:"backfill"`
	Continuation      string    `grove:"continuation"`
	ContinuationError string    `grove:"continuation_error"`
	CreatedAt         time.Time `grove:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"`
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
