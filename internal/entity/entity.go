// Package entity defines the base entity type for persisted herald objects.
package entity

import "time"

// Entity carries the timestamps shared by correlation entries and dispatch records.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an Entity with both timestamps set to the current UTC time.
func New() Entity {
	now := time.Now().UTC()
	return Entity{CreatedAt: now, UpdatedAt: now}
}
