package herald

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/event"
	"github.com/xraph/herald/id"
	"github.com/xraph/herald/observability"
	"github.com/xraph/herald/record"
	"github.com/xraph/herald/rule"
	"github.com/xraph/herald/source"
	"github.com/xraph/herald/store"
)

// Result describes the outcome of one dispatch.
type Result struct {
	EventID id.ID        `json:"event_id"`
	State   record.State `json:"state"`

	// Item is the parsed domain item carried by the event.
	Item any `json:"item,omitempty"`

	// Ack is set for wait-mode posts.
	Ack destination.Ack `json:"ack,omitzero"`

	// Continuation is the running post-acknowledgement task, if any.
	Continuation *Task `json:"-"`
}

// HandleRequest finds the source that accepts r, extracts its event and
// dispatches it.
func (h *Herald) HandleRequest(ctx context.Context, r *http.Request) (*Result, error) {
	src := h.sourceFor(r)
	if src == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNoSource, r.Method, r.URL.Path)
	}

	evt, err := src.Extract(r)
	if err != nil {
		h.logger.WarnContext(ctx, "herald: extract failed",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %s: %w", ErrExtractFailed, src.Name(), err)
	}
	h.metrics.RecordReceived(src.Name())

	return h.Process(ctx, evt)
}

// Process dispatches a single event through the rule table.
//
// The returned Result is non-nil whenever rule matching was reached, even
// when an error is returned, so callers can inspect the final state. A
// continuation, when started, keeps running after ctx is cancelled.
func (h *Herald) Process(ctx context.Context, evt *event.Event) (*Result, error) {
	if h.isStopped() {
		return nil, ErrStopped
	}

	start := time.Now()
	ctx, span := h.tracer.StartDispatchSpan(ctx, evt.ID.String(), evt.Source, evt.Kind, evt.EntityID)

	res := &Result{EventID: evt.ID, Item: evt.Data}
	rec := &record.Record{
		Entity:       NewEntity(),
		ID:           evt.ID,
		Source:       evt.Source,
		Kind:         evt.Kind,
		EntityID:     evt.EntityID,
		Continuation: record.ContinuationNone,
	}

	r, err := h.dispatch(ctx, evt, res, rec)
	rec.State = res.State
	if err != nil {
		rec.Error = err.Error()
	}

	startContinuation := err == nil && r.Wait && r.OnAcknowledged != nil
	if startContinuation {
		rec.Continuation = record.ContinuationPending
	}

	h.tracer.EndSpan(span, string(res.State), err)
	h.metrics.RecordDispatch(string(res.State), time.Since(start).Seconds())
	h.createRecord(ctx, rec)
	h.logDispatch(ctx, evt, res, err)

	if startContinuation {
		res.Continuation = h.continueAfter(ctx, evt, r, res.Ack, rec)
	}
	return res, err
}

// dispatch runs rule lookup, mutation, composition and the primary post.
// It sets res.State on every path and returns the matched rule.
func (h *Herald) dispatch(ctx context.Context, evt *event.Event, res *Result, rec *record.Record) (*rule.Rule, error) {
	r, ok := h.findRule(evt)
	if !ok {
		res.State = record.StateNoRule
		return nil, fmt.Errorf("%w: %s", ErrNoRule, evt.Kind)
	}

	resolved := r.Resolve()
	if r.Mutate != nil {
		if err := r.Mutate(ctx, evt, resolved); err != nil {
			res.State = record.StateFailed
			return r, fmt.Errorf("%w: %s: %w", ErrMutateFailed, r.Name, err)
		}
	}
	rec.Backfill = resolved.Backfilled
	rec.ThreadID = resolved.Target.ThreadID

	if resolved.Cancelled {
		res.State = record.StateCancelled
		return r, fmt.Errorf("%w: %s", ErrDispatchCancelled, resolved.Reason)
	}

	msg, err := r.Compose(evt)
	if err != nil {
		res.State = record.StateFailed
		return r, fmt.Errorf("%w: compose %s: %w", ErrDispatchFailed, r.Name, err)
	}

	if !r.Wait {
		if err := h.client.Post(ctx, resolved.Target, msg); err != nil {
			res.State = record.StateFailed
			return r, fmt.Errorf("%w: %w", ErrDispatchFailed, err)
		}
		res.State = record.StateDelivered
		return r, nil
	}

	ack, err := h.client.PostWait(ctx, resolved.Target, msg)
	if err != nil {
		res.State = record.StateFailed
		return r, fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	if ack.MessageID == "" {
		res.State = record.StateFailed
		return r, fmt.Errorf("%w: no message id", ErrMissingAcknowledgement)
	}

	res.Ack = ack
	res.State = record.StateDelivered
	rec.MessageID = ack.MessageID
	if ack.ThreadID != "" {
		rec.ThreadID = ack.ThreadID
	}
	return r, nil
}

// continueAfter starts r's acknowledgement handler in the background. The
// handler's context keeps ctx's values but not its cancellation.
func (h *Herald) continueAfter(ctx context.Context, evt *event.Event, r *rule.Rule, ack destination.Ack, rec *record.Record) *Task {
	task := newTask(evt.ID)
	cctx := context.WithoutCancel(ctx)

	h.mu.Lock()
	if h.stopped {
		// Stop is already waiting; run inline rather than join a closed group.
		h.mu.Unlock()
		h.runContinuation(cctx, evt, r, ack, rec, task)
		return task
	}
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		h.runContinuation(cctx, evt, r, ack, rec, task)
	}()
	return task
}

func (h *Herald) runContinuation(ctx context.Context, evt *event.Event, r *rule.Rule, ack destination.Ack, rec *record.Record, task *Task) {
	if h.config.ContinuationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.ContinuationTimeout)
		defer cancel()
	}

	h.metrics.ContinuationStarted()
	ctx, span := h.tracer.StartContinuationSpan(ctx, evt.ID.String(), task.ID.String())

	err := safeAck(ctx, r.OnAcknowledged, evt, ack)

	state := record.ContinuationCompleted
	if err != nil {
		state = record.ContinuationFailed
		h.logger.ErrorContext(ctx, "herald: continuation failed",
			slog.String("event_id", evt.ID.String()),
			slog.String("task_id", task.ID.String()),
			slog.String("rule", r.Name),
			slog.String("entity_id", evt.EntityID),
			slog.String("error", err.Error()),
		)
	} else {
		h.logger.DebugContext(ctx, "herald: continuation completed",
			slog.String("event_id", evt.ID.String()),
			slog.String("task_id", task.ID.String()),
		)
	}
	h.tracer.EndSpan(span, string(state), err)
	h.metrics.ContinuationFinished(err != nil)

	done := *rec
	done.Continuation = state
	if err != nil {
		done.ContinuationError = err.Error()
	}
	h.updateRecord(ctx, &done)

	task.finish(err)
}

func safeAck(ctx context.Context, fn rule.AckFunc, evt *event.Event, ack destination.Ack) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("herald: continuation panic: %v", p)
		}
	}()
	return fn(ctx, evt, ack)
}

func (h *Herald) createRecord(ctx context.Context, rec *record.Record) {
	if !h.config.RecordDispatches {
		return
	}
	if err := h.store.CreateRecord(ctx, rec); err != nil {
		h.logger.WarnContext(ctx, "herald: failed to record dispatch",
			slog.String("event_id", rec.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (h *Herald) updateRecord(ctx context.Context, rec *record.Record) {
	if !h.config.RecordDispatches {
		return
	}
	rec.UpdatedAt = time.Now().UTC()
	if err := h.store.UpdateRecord(ctx, rec); err != nil {
		h.logger.WarnContext(ctx, "herald: failed to update dispatch record",
			slog.String("event_id", rec.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (h *Herald) logDispatch(ctx context.Context, evt *event.Event, res *Result, err error) {
	attrs := []any{
		slog.String("event_id", evt.ID.String()),
		slog.String("source", evt.Source),
		slog.String("kind", evt.Kind),
		slog.String("entity_id", evt.EntityID),
		slog.String("state", string(res.State)),
	}
	switch {
	case err == nil:
		h.logger.InfoContext(ctx, "herald: dispatched", attrs...)
	case errors.Is(err, ErrNoRule), errors.Is(err, ErrDispatchCancelled):
		h.logger.InfoContext(ctx, "herald: dispatch skipped", append(attrs, slog.String("reason", err.Error()))...)
	default:
		h.logger.ErrorContext(ctx, "herald: dispatch failed", append(attrs, slog.String("error", err.Error()))...)
	}
}

// findRule consults the event's source table before the shared rules.
func (h *Herald) findRule(evt *event.Event) (*rule.Rule, bool) {
	if r, ok := h.bySource[evt.Source].Find(evt.Kind); ok {
		return r, true
	}
	return h.rules.Find(evt.Kind)
}

func (h *Herald) sourceFor(r *http.Request) source.Source {
	for _, src := range h.sources {
		if src.Accepts(r) {
			return src
		}
	}
	return nil
}

func (h *Herald) isStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Stop refuses new dispatches and waits for running continuations, up to
// the configured shutdown timeout or until ctx is done.
func (h *Herald) Stop(ctx context.Context) error {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	var timeout <-chan time.Time
	if h.config.ShutdownTimeout > 0 {
		timer := time.NewTimer(h.config.ShutdownTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-done:
		return nil
	case <-timeout:
		return ErrShutdownTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Store returns the configured store.
func (h *Herald) Store() store.Store { return h.store }

// Rules returns the rule table for the named source, or the shared table
// when name is empty or unknown.
func (h *Herald) Rules(name string) *rule.Table {
	if t, ok := h.bySource[name]; ok {
		return t
	}
	return h.rules
}

// Sources returns the registered sources in lookup order.
func (h *Herald) Sources() []source.Source { return h.sources }

// Metrics returns the configured metrics, or nil.
func (h *Herald) Metrics() *observability.Metrics { return h.metrics }

// Config returns the active configuration.
func (h *Herald) Config() Config { return h.config }
