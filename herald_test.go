package herald_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	gu "github.com/xraph/go-utils/metrics"

	"github.com/xraph/herald"
	"github.com/xraph/herald/correlation"
	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/destination/recorder"
	"github.com/xraph/herald/event"
	"github.com/xraph/herald/message"
	"github.com/xraph/herald/observability"
	"github.com/xraph/herald/record"
	"github.com/xraph/herald/rule"
	"github.com/xraph/herald/source/github"
	"github.com/xraph/herald/source/workshop"
	"github.com/xraph/herald/store/memory"
)

var (
	announcement = destination.Target{WebhookID: "ann", Token: "tok"}
	forum        = destination.Target{WebhookID: "forum", Token: "tok"}
)

func ctx() context.Context { return context.Background() }

// journal lists correlation-store and destination calls in the order the
// engine made them.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(op string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, op)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type journaledStore struct {
	*memory.Store
	j *journal
}

func (s journaledStore) GetCorrelation(c context.Context, entityID string) (*correlation.Entry, error) {
	s.j.add("get_correlation")
	return s.Store.GetCorrelation(c, entityID)
}

func (s journaledStore) PutCorrelation(c context.Context, e *correlation.Entry) error {
	s.j.add("put_correlation")
	return s.Store.PutCorrelation(c, e)
}

func (s journaledStore) DeleteCorrelation(c context.Context, entityID string) error {
	s.j.add("delete_correlation")
	return s.Store.DeleteCorrelation(c, entityID)
}

type journaledClient struct {
	*recorder.Recorder
	j *journal
}

func (c journaledClient) Post(cx context.Context, to destination.Target, msg *message.Message) error {
	c.j.add("post")
	return c.Recorder.Post(cx, to, msg)
}

func (c journaledClient) PostWait(cx context.Context, to destination.Target, msg *message.Message) (destination.Ack, error) {
	c.j.add("post_wait")
	return c.Recorder.PostWait(cx, to, msg)
}

func (c journaledClient) Publish(cx context.Context, channelID, messageID string) error {
	c.j.add("publish")
	return c.Recorder.Publish(cx, channelID, messageID)
}

type fixture struct {
	h       *herald.Herald
	store   *memory.Store
	client  *recorder.Recorder
	ws      *workshop.Source
	journal *journal
}

// setup wires the workshop source over a memory store and a recorder. Calls
// made through the engine are journaled; direct f.store calls are not.
func setup(t *testing.T, opts ...herald.Option) *fixture {
	t.Helper()
	s := memory.New()
	c := recorder.New()
	j := &journal{}
	js := journaledStore{Store: s, j: j}
	jc := journaledClient{Recorder: c, j: j}

	ws, err := workshop.New(workshop.Config{
		Announcement: announcement,
		Forum:        forum,
		Composer: workshop.Composer{
			DownloadURL: "https://dl.example/",
			GuildID:     "guild",
		},
	}, jc, js)
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]herald.Option{
		herald.WithStore(js),
		herald.WithDestination(jc),
		herald.WithSource(ws),
	}, opts...)
	h, err := herald.New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = h.Stop(ctx()) })
	return &fixture{h: h, store: s, client: c, ws: ws, journal: j}
}

func assertJournal(t *testing.T, j *journal, want ...string) {
	t.Helper()
	got := j.list()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", got, want)
	}
}

func mapPack() *workshop.Item {
	return &workshop.Item{
		ID:          "42",
		Title:       "Map Pack",
		Description: strings.Repeat("A", 300),
		Preview:     workshop.Preview{URL: "http://x/p.png"},
		Time:        workshop.Times{Created: 1700000000},
		Creator:     workshop.Creator{ID: "7", Name: "Ann"},
	}
}

func workshopEvent(kind string, item *workshop.Item) *event.Event {
	return event.New(workshop.Name, kind, item.ID, item)
}

func waitTask(t *testing.T, res *herald.Result) error {
	t.Helper()
	if res.Continuation == nil {
		t.Fatal("expected a continuation")
	}
	c, cancel := context.WithTimeout(ctx(), 5*time.Second)
	defer cancel()
	return res.Continuation.Wait(c)
}

func assertOps(t *testing.T, c *recorder.Recorder, want ...recorder.Op) {
	t.Helper()
	got := c.Ops()
	if len(got) != len(want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops = %v, want %v", got, want)
		}
	}
}

func TestNewRequiresStoreAndDestination(t *testing.T) {
	if _, err := herald.New(herald.WithDestination(recorder.New())); !errors.Is(err, herald.ErrNoStore) {
		t.Fatalf("err = %v, want ErrNoStore", err)
	}
	if _, err := herald.New(herald.WithStore(memory.New())); !errors.Is(err, herald.ErrNoDestination) {
		t.Fatalf("err = %v, want ErrNoDestination", err)
	}
}

func TestNewRejectsDuplicateRules(t *testing.T) {
	compose := func(*event.Event) (*message.Message, error) { return &message.Message{}, nil }
	_, err := herald.New(
		herald.WithStore(memory.New()),
		herald.WithDestination(recorder.New()),
		herald.WithRules(
			&rule.Rule{Name: "push", Compose: compose},
			&rule.Rule{Name: "push", Compose: compose},
		),
	)
	if !errors.Is(err, rule.ErrDuplicateRule) {
		t.Fatalf("err = %v, want ErrDuplicateRule", err)
	}
}

func TestCreatedAnnouncesAndOpensThread(t *testing.T) {
	f := setup(t)
	item := mapPack()

	res, err := f.h.Process(ctx(), workshopEvent(workshop.KindCreated, item))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.State != record.StateDelivered {
		t.Fatalf("state = %q", res.State)
	}
	if res.Ack.MessageID == "" {
		t.Fatal("expected ack message id")
	}
	if got, ok := res.Item.(*workshop.Item); !ok || got.ID != "42" {
		t.Fatalf("item = %#v", res.Item)
	}
	if err := waitTask(t, res); err != nil {
		t.Fatalf("continuation: %v", err)
	}

	assertOps(t, f.client, recorder.OpPostWait, recorder.OpPublish, recorder.OpPostWait, recorder.OpPost)
	// The thread is recorded only after the creator follow-up landed in it.
	assertJournal(t, f.journal, "post_wait", "publish", "post_wait", "post", "put_correlation")
	calls := f.client.Calls()

	if calls[0].Target != announcement {
		t.Fatalf("announcement target = %+v", calls[0].Target)
	}
	if calls[1].ChannelID != res.Ack.ChannelID || calls[1].MessageID != res.Ack.MessageID {
		t.Fatalf("publish = %+v, ack = %+v", calls[1], res.Ack)
	}
	if calls[2].Target != forum || calls[2].Message.ThreadName != "Map Pack" {
		t.Fatalf("thread call = %+v", calls[2])
	}

	entry, err := f.store.GetCorrelation(ctx(), "42")
	if err != nil {
		t.Fatalf("GetCorrelation: %v", err)
	}
	if calls[3].Target.ThreadID != entry.ThreadID {
		t.Fatalf("follow-up thread = %q, correlation = %q", calls[3].Target.ThreadID, entry.ThreadID)
	}

	rec, err := f.store.GetRecord(ctx(), res.EventID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.Continuation != record.ContinuationCompleted {
		t.Fatalf("continuation = %q", rec.Continuation)
	}
}

func TestMapPackScenario(t *testing.T) {
	f := setup(t)

	res, err := f.h.Process(ctx(), workshopEvent(workshop.KindCreated, mapPack()))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := waitTask(t, res); err != nil {
		t.Fatalf("continuation: %v", err)
	}

	calls := f.client.Calls()
	announced := calls[0].Message
	embed := announced.Embeds[0]
	if n := utf8.RuneCountInString(embed.Description); n != 180 {
		t.Fatalf("description length = %d, want 180", n)
	}
	if !strings.Contains(embed.Footer, "Nov 14 2023") {
		t.Fatalf("footer = %q", embed.Footer)
	}
	if embed.ImageURL != "http://x/p.png" {
		t.Fatalf("image = %q", embed.ImageURL)
	}
	if len(announced.Links) != 2 || announced.Links[0].Label != "View" || announced.Links[1].Label != "Download" {
		t.Fatalf("announcement links = %+v", announced.Links)
	}

	thread := calls[2].Message
	if len(thread.Links) != 3 || thread.Links[2].Label != "View post" {
		t.Fatalf("thread links = %+v", thread.Links)
	}
	if !strings.HasSuffix(thread.Links[2].URL, "/"+res.Ack.ChannelID+"/"+res.Ack.MessageID) {
		t.Fatalf("view post url = %q", thread.Links[2].URL)
	}
}

func TestUpdatedUsesRecordedThread(t *testing.T) {
	f := setup(t)
	if err := f.store.PutCorrelation(ctx(), &correlation.Entry{EntityID: "42", ThreadID: "T1", Source: workshop.Name}); err != nil {
		t.Fatal(err)
	}
	before, err := f.store.GetCorrelation(ctx(), "42")
	if err != nil {
		t.Fatal(err)
	}

	res, err := f.h.Process(ctx(), workshopEvent(workshop.KindUpdated, mapPack()))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Continuation != nil {
		t.Fatal("updated has no continuation")
	}

	assertOps(t, f.client, recorder.OpPost)
	assertJournal(t, f.journal, "get_correlation", "post")

	after, err := f.store.GetCorrelation(ctx(), "42")
	if err != nil {
		t.Fatal(err)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) || after.ThreadID != "T1" {
		t.Fatalf("correlation rewritten: before %+v, after %+v", before, after)
	}
	call := f.client.Calls()[0]
	if call.Target.ThreadID != "T1" || call.Target.WebhookID != forum.WebhookID {
		t.Fatalf("target = %+v", call.Target)
	}
	if call.Message.Embeds[0].Color != workshop.ColorUpdated {
		t.Fatalf("color = %#x", call.Message.Embeds[0].Color)
	}

	rec, _ := f.store.GetRecord(ctx(), res.EventID)
	if rec.ThreadID != "T1" || rec.Backfill {
		t.Fatalf("record = %+v", rec)
	}
}

func TestUpdatedBackfillsMissingThread(t *testing.T) {
	f := setup(t)

	res, err := f.h.Process(ctx(), workshopEvent(workshop.KindUpdated, mapPack()))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	assertOps(t, f.client, recorder.OpPostWait, recorder.OpPost)
	calls := f.client.Calls()
	if calls[0].Message.ThreadName == "" {
		t.Fatal("backfill post must open a thread")
	}

	entry, err := f.store.GetCorrelation(ctx(), "42")
	if err != nil {
		t.Fatalf("GetCorrelation: %v", err)
	}
	if calls[1].Target.ThreadID != entry.ThreadID {
		t.Fatalf("update thread = %q, correlation = %q", calls[1].Target.ThreadID, entry.ThreadID)
	}

	rec, _ := f.store.GetRecord(ctx(), res.EventID)
	if !rec.Backfill {
		t.Fatal("record should be marked as backfill")
	}
}

func TestUpdatedCancelledWithoutThread(t *testing.T) {
	f := setup(t)
	f.client.SetAck(func(destination.Target, *message.Message) (destination.Ack, error) {
		return destination.Ack{MessageID: "m"}, nil
	})

	res, err := f.h.Process(ctx(), workshopEvent(workshop.KindUpdated, mapPack()))
	if !errors.Is(err, herald.ErrDispatchCancelled) {
		t.Fatalf("err = %v, want ErrDispatchCancelled", err)
	}
	if res.State != record.StateCancelled {
		t.Fatalf("state = %q", res.State)
	}
	assertOps(t, f.client, recorder.OpPostWait)

	if _, err := f.store.GetCorrelation(ctx(), "42"); !errors.Is(err, herald.ErrCorrelationNotFound) {
		t.Fatalf("correlation err = %v", err)
	}
}

func TestNoRule(t *testing.T) {
	f := setup(t)

	res, err := f.h.Process(ctx(), workshopEvent("deleted", mapPack()))
	if !errors.Is(err, herald.ErrNoRule) {
		t.Fatalf("err = %v, want ErrNoRule", err)
	}
	if len(f.client.Calls()) != 0 {
		t.Fatalf("calls = %v", f.client.Ops())
	}
	rec, err := f.store.GetRecord(ctx(), res.EventID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.State != record.StateNoRule {
		t.Fatalf("state = %q", rec.State)
	}
}

func TestPostFailure(t *testing.T) {
	f := setup(t)
	f.client.FailPosts(errors.New("boom"))

	res, err := f.h.Process(ctx(), workshopEvent(workshop.KindCreated, mapPack()))
	if !errors.Is(err, herald.ErrDispatchFailed) {
		t.Fatalf("err = %v, want ErrDispatchFailed", err)
	}
	if res.Continuation != nil {
		t.Fatal("failed post must not start a continuation")
	}
	assertOps(t, f.client, recorder.OpPostWait)
}

func TestMissingAcknowledgement(t *testing.T) {
	f := setup(t)
	f.client.SetAck(func(destination.Target, *message.Message) (destination.Ack, error) {
		return destination.Ack{}, nil
	})

	res, err := f.h.Process(ctx(), workshopEvent(workshop.KindCreated, mapPack()))
	if !errors.Is(err, herald.ErrMissingAcknowledgement) {
		t.Fatalf("err = %v, want ErrMissingAcknowledgement", err)
	}
	if res.State != record.StateFailed || res.Continuation != nil {
		t.Fatalf("result = %+v", res)
	}
	assertOps(t, f.client, recorder.OpPostWait)
}

func TestContinuationFailureLeavesResult(t *testing.T) {
	f := setup(t)
	f.client.FailPublish(errors.New("forbidden"))

	res, err := f.h.Process(ctx(), workshopEvent(workshop.KindCreated, mapPack()))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.State != record.StateDelivered {
		t.Fatalf("state = %q", res.State)
	}
	if err := waitTask(t, res); err == nil {
		t.Fatal("expected continuation error")
	}
	if res.Continuation.Err() == nil {
		t.Fatal("Err should report the failure once done")
	}

	assertOps(t, f.client, recorder.OpPostWait, recorder.OpPublish)
	if _, err := f.store.GetCorrelation(ctx(), "42"); !errors.Is(err, herald.ErrCorrelationNotFound) {
		t.Fatalf("correlation err = %v", err)
	}

	rec, _ := f.store.GetRecord(ctx(), res.EventID)
	if rec.State != record.StateDelivered || rec.Continuation != record.ContinuationFailed || rec.ContinuationError == "" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestContinuationOutlivesRequestContext(t *testing.T) {
	release := make(chan struct{})
	var sawCancel atomic.Bool
	compose := func(*event.Event) (*message.Message, error) { return &message.Message{Content: "hi"}, nil }

	s := memory.New()
	h, err := herald.New(
		herald.WithStore(s),
		herald.WithDestination(recorder.New()),
		herald.WithRules(&rule.Rule{
			Name:    "ping",
			Target:  announcement,
			Compose: compose,
			Wait:    true,
			OnAcknowledged: func(c context.Context, _ *event.Event, _ destination.Ack) error {
				<-release
				sawCancel.Store(c.Err() != nil)
				return nil
			},
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	reqCtx, cancel := context.WithCancel(ctx())
	res, err := h.Process(reqCtx, event.New("test", "ping", "e1", nil))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	cancel()
	close(release)

	if err := waitTask(t, res); err != nil {
		t.Fatalf("continuation: %v", err)
	}
	if sawCancel.Load() {
		t.Fatal("continuation context was cancelled with the request")
	}
}

func TestStopWaitsForContinuations(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool
	compose := func(*event.Event) (*message.Message, error) { return &message.Message{Content: "hi"}, nil }

	h, err := herald.New(
		herald.WithStore(memory.New()),
		herald.WithDestination(recorder.New()),
		herald.WithRules(&rule.Rule{
			Name:    "ping",
			Target:  announcement,
			Compose: compose,
			Wait:    true,
			OnAcknowledged: func(context.Context, *event.Event, destination.Ack) error {
				<-release
				finished.Store(true)
				return nil
			},
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Process(ctx(), event.New("test", "ping", "e1", nil)); err != nil {
		t.Fatalf("Process: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	if err := h.Stop(ctx()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !finished.Load() {
		t.Fatal("Stop returned before the continuation finished")
	}

	if _, err := h.Process(ctx(), event.New("test", "ping", "e2", nil)); !errors.Is(err, herald.ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
}

func TestStopTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	compose := func(*event.Event) (*message.Message, error) { return &message.Message{Content: "hi"}, nil }

	h, err := herald.New(
		herald.WithStore(memory.New()),
		herald.WithDestination(recorder.New()),
		herald.WithShutdownTimeout(10*time.Millisecond),
		herald.WithRules(&rule.Rule{
			Name:    "ping",
			Target:  announcement,
			Compose: compose,
			Wait:    true,
			OnAcknowledged: func(context.Context, *event.Event, destination.Ack) error {
				<-release
				return nil
			},
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Process(ctx(), event.New("test", "ping", "e1", nil)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := h.Stop(ctx()); !errors.Is(err, herald.ErrShutdownTimeout) {
		t.Fatalf("err = %v, want ErrShutdownTimeout", err)
	}
}

func TestMutateErrorFailsDispatch(t *testing.T) {
	compose := func(*event.Event) (*message.Message, error) { return &message.Message{Content: "hi"}, nil }
	c := recorder.New()
	h, err := herald.New(
		herald.WithStore(memory.New()),
		herald.WithDestination(c),
		herald.WithRules(&rule.Rule{
			Name:    "ping",
			Target:  announcement,
			Compose: compose,
			Mutate: func(context.Context, *event.Event, *rule.Resolved) error {
				return errors.New("store down")
			},
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	res, err := h.Process(ctx(), event.New("test", "ping", "e1", nil))
	if !errors.Is(err, herald.ErrMutateFailed) {
		t.Fatalf("err = %v, want ErrMutateFailed", err)
	}
	if res.State != record.StateFailed || len(c.Calls()) != 0 {
		t.Fatalf("state = %q, calls = %v", res.State, c.Ops())
	}
}

func TestWithoutRecords(t *testing.T) {
	f := setup(t, herald.WithoutRecords())

	res, err := f.h.Process(ctx(), workshopEvent("deleted", mapPack()))
	if !errors.Is(err, herald.ErrNoRule) {
		t.Fatalf("err = %v", err)
	}
	if _, err := f.store.GetRecord(ctx(), res.EventID); !errors.Is(err, herald.ErrRecordNotFound) {
		t.Fatalf("GetRecord err = %v, want ErrRecordNotFound", err)
	}
}

func TestHandleRequest(t *testing.T) {
	f := setup(t)

	body, _ := json.Marshal(mapPack())
	req := httptest.NewRequest(http.MethodPost, "/workshop", bytes.NewReader(body))
	req.Header.Set(workshop.HeaderEvent, workshop.KindUpdated)

	if err := f.store.PutCorrelation(ctx(), &correlation.Entry{EntityID: "42", ThreadID: "T1"}); err != nil {
		t.Fatal(err)
	}
	res, err := f.h.HandleRequest(ctx(), req)
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if item := res.Item.(*workshop.Item); item.Title != "Map Pack" {
		t.Fatalf("item = %+v", item)
	}
}

func TestHandleRequestErrors(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/elsewhere", strings.NewReader("{}"))
	if _, err := f.h.HandleRequest(ctx(), req); !errors.Is(err, herald.ErrNoSource) {
		t.Fatalf("err = %v, want ErrNoSource", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/workshop", strings.NewReader("{}"))
	if _, err := f.h.HandleRequest(ctx(), req); !errors.Is(err, herald.ErrExtractFailed) {
		t.Fatalf("err = %v, want ErrExtractFailed", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/workshop", strings.NewReader(`{"title":"no id"}`))
	req.Header.Set(workshop.HeaderEvent, workshop.KindCreated)
	if _, err := f.h.HandleRequest(ctx(), req); !errors.Is(err, herald.ErrExtractFailed) {
		t.Fatalf("err = %v, want ErrExtractFailed", err)
	}
	if len(f.client.Calls()) != 0 {
		t.Fatalf("calls = %v", f.client.Ops())
	}
}

func TestSourceCatchAllStaysInSource(t *testing.T) {
	gh, err := github.New(github.Config{
		Webhook:       destination.Target{WebhookID: "gh", Token: "tok"},
		DefaultEvents: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	f := setup(t, herald.WithSource(gh))

	if _, err := f.h.Process(ctx(), workshopEvent("deleted", mapPack())); !errors.Is(err, herald.ErrNoRule) {
		t.Fatalf("err = %v, want ErrNoRule", err)
	}

	payload := &github.Payload{Repository: github.Repository{FullName: "acme/app"}}
	res, err := f.h.Process(ctx(), event.New(github.Name, "fork", "acme/app", payload))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.State != record.StateDelivered {
		t.Fatalf("state = %q", res.State)
	}
	assertOps(t, f.client, recorder.OpPost)
	if f.client.Calls()[0].Target.WebhookID != "gh" {
		t.Fatalf("target = %+v", f.client.Calls()[0].Target)
	}
}

func TestMetricsFollowDispatches(t *testing.T) {
	m := observability.NewMetrics(gu.NewMetricsCollector("herald-test"))
	f := setup(t, herald.WithMetrics(m))

	res, err := f.h.Process(ctx(), workshopEvent(workshop.KindCreated, mapPack()))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := waitTask(t, res); err != nil {
		t.Fatalf("continuation: %v", err)
	}
	_, _ = f.h.Process(ctx(), workshopEvent("deleted", mapPack()))

	if f.h.Metrics() != m {
		t.Fatal("Metrics() should return the configured instruments")
	}
	snap := m.Snapshot()
	if snap.Dispatches != 2 {
		t.Fatalf("dispatches = %v, want 2", snap.Dispatches)
	}
	if snap.DispatchesByState[string(record.StateDelivered)] != 1 || snap.DispatchesByState[string(record.StateNoRule)] != 1 {
		t.Fatalf("by state = %v", snap.DispatchesByState)
	}
	if snap.PendingContinuations != 0 || snap.ContinuationsFailed != 0 {
		t.Fatalf("continuations = %+v", snap)
	}
}
