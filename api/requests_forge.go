package api

// ---------------------------------------------------------------------------
// Record requests
// ---------------------------------------------------------------------------

// ListRecordsForgeRequest binds query parameters for GET /records.
type ListRecordsForgeRequest struct {
	Source   string `description:"Filter by source"                      query:"source"`
	EntityID string `description:"Filter by entity"                      query:"entity_id"`
	State    string `description:"Filter by state (delivered, no_rule, cancelled, failed)" query:"state"`
	Offset   int    `description:"Pagination offset"                     query:"offset"`
	Limit    int    `description:"Page size (default 50)"                query:"limit"`
}

// GetRecordForgeRequest binds the path for GET /records/:recordId.
type GetRecordForgeRequest struct {
	RecordID string `description:"Dispatch record identifier" path:"recordId"`
}

// ---------------------------------------------------------------------------
// Correlation requests
// ---------------------------------------------------------------------------

// GetCorrelationForgeRequest binds the path for GET /correlations/:entityId.
type GetCorrelationForgeRequest struct {
	EntityID string `description:"Producer entity identifier" path:"entityId"`
}

// PutCorrelationForgeRequest binds path + body for PUT /correlations/:entityId.
type PutCorrelationForgeRequest struct {
	EntityID string `description:"Producer entity identifier" path:"entityId"`
	ThreadID string `description:"Destination thread identifier" json:"thread_id"`
	Source   string `description:"Owning source"               json:"source,omitempty"`
}

// DeleteCorrelationForgeRequest binds the path for DELETE /correlations/:entityId.
type DeleteCorrelationForgeRequest struct {
	EntityID string `description:"Producer entity identifier" path:"entityId"`
}

// HealthForgeRequest is the empty request for GET /healthz.
type HealthForgeRequest struct{}
