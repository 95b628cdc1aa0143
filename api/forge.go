package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/herald"
	"github.com/xraph/herald/correlation"
	"github.com/xraph/herald/id"
	"github.com/xraph/herald/record"
	"github.com/xraph/herald/store"
)

// ForgeAPI registers the admin routes on a Forge router. Producer requests
// stay on Handler, whose bare-500 contract Forge's error bodies would break.
type ForgeAPI struct {
	store store.Store
	log   forge.Logger
}

// NewForgeAPI creates a ForgeAPI reading s.
func NewForgeAPI(s store.Store, log forge.Logger) *ForgeAPI {
	return &ForgeAPI{store: s, log: log}
}

// RegisterRoutes registers all herald admin routes into the given Forge router
// with full OpenAPI metadata.
func (a *ForgeAPI) RegisterRoutes(router forge.Router) {
	a.registerRecordRoutes(router)
	a.registerCorrelationRoutes(router)
	a.registerHealthRoutes(router)
}

// ---------------------------------------------------------------------------
// Record routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerRecordRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("records"))

	if err := g.GET("/records", a.listRecords,
		forge.WithSummary("List dispatch records"),
		forge.WithDescription("Returns dispatch records, newest first."),
		forge.WithOperationID("listRecords"),
		forge.WithRequestSchema(ListRecordsForgeRequest{}),
		forge.WithListResponse(record.Record{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listRecords route", forge.Error(err))
	}

	if err := g.GET("/records/:recordId", a.getRecord,
		forge.WithSummary("Get dispatch record"),
		forge.WithDescription("Returns one dispatch and its continuation state."),
		forge.WithOperationID("getRecord"),
		forge.WithResponseSchema(http.StatusOK, "Dispatch record", record.Record{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getRecord route", forge.Error(err))
	}
}

func (a *ForgeAPI) listRecords(ctx forge.Context, req *ListRecordsForgeRequest) ([]*record.Record, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	opts := record.ListOpts{
		Offset:   req.Offset,
		Limit:    limit,
		Source:   req.Source,
		EntityID: req.EntityID,
	}
	if req.State != "" {
		state := record.State(req.State)
		opts.State = &state
	}

	records, err := a.store.ListRecords(ctx.Context(), opts)
	if err != nil {
		return nil, mapError(err)
	}

	return records, nil
}

func (a *ForgeAPI) getRecord(ctx forge.Context, req *GetRecordForgeRequest) (*record.Record, error) {
	recID, err := id.ParseDispatchID(req.RecordID)
	if err != nil {
		return nil, forge.BadRequest("invalid record ID")
	}

	rec, err := a.store.GetRecord(ctx.Context(), recID)
	if err != nil {
		return nil, mapError(err)
	}

	return rec, nil
}

// ---------------------------------------------------------------------------
// Correlation routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerCorrelationRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("correlations"))

	if err := g.GET("/correlations/:entityId", a.getCorrelation,
		forge.WithSummary("Get correlation"),
		forge.WithDescription("Returns the thread recorded for a producer entity."),
		forge.WithOperationID("getCorrelation"),
		forge.WithResponseSchema(http.StatusOK, "Correlation entry", correlation.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getCorrelation route", forge.Error(err))
	}

	if err := g.PUT("/correlations/:entityId", a.putCorrelation,
		forge.WithSummary("Put correlation"),
		forge.WithDescription("Records or replaces the thread for a producer entity."),
		forge.WithOperationID("putCorrelation"),
		forge.WithRequestSchema(PutCorrelationForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Correlation entry", correlation.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register putCorrelation route", forge.Error(err))
	}

	if err := g.DELETE("/correlations/:entityId", a.deleteCorrelation,
		forge.WithSummary("Delete correlation"),
		forge.WithDescription("Forgets an entity's thread; its next update opens a new one."),
		forge.WithOperationID("deleteCorrelation"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register deleteCorrelation route", forge.Error(err))
	}
}

func (a *ForgeAPI) getCorrelation(ctx forge.Context, req *GetCorrelationForgeRequest) (*correlation.Entry, error) {
	entry, err := a.store.GetCorrelation(ctx.Context(), req.EntityID)
	if err != nil {
		return nil, mapError(err)
	}

	return entry, nil
}

func (a *ForgeAPI) putCorrelation(ctx forge.Context, req *PutCorrelationForgeRequest) (*correlation.Entry, error) {
	if req.ThreadID == "" {
		return nil, forge.BadRequest("thread_id is required")
	}

	entry := &correlation.Entry{
		Entity:   herald.NewEntity(),
		EntityID: req.EntityID,
		ThreadID: req.ThreadID,
		Source:   req.Source,
	}
	if err := a.store.PutCorrelation(ctx.Context(), entry); err != nil {
		return nil, mapError(err)
	}

	return entry, nil
}

func (a *ForgeAPI) deleteCorrelation(ctx forge.Context, req *DeleteCorrelationForgeRequest) (*correlation.Entry, error) {
	if err := a.store.DeleteCorrelation(ctx.Context(), req.EntityID); err != nil {
		return nil, mapError(err)
	}

	err := ctx.NoContent(http.StatusNoContent)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.NoContent.
	return nil, nil
}

// ---------------------------------------------------------------------------
// Health routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerHealthRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("health"))

	if err := g.GET("/healthz", a.health,
		forge.WithSummary("Health check"),
		forge.WithDescription("Pings the store."),
		forge.WithOperationID("health"),
		forge.WithResponseSchema(http.StatusOK, "Health status", healthResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register health route", forge.Error(err))
	}
}

func (a *ForgeAPI) health(ctx forge.Context, _ *HealthForgeRequest) (*healthResponse, error) {
	if err := a.store.Ping(ctx.Context()); err != nil {
		return nil, forge.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return &healthResponse{Status: "ok"}, nil
}
