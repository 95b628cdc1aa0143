package workshop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/xraph/herald"
	"github.com/xraph/herald/correlation"
	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/destination/recorder"
	"github.com/xraph/herald/event"
	"github.com/xraph/herald/message"
	"github.com/xraph/herald/signature"
	"github.com/xraph/herald/source"
	"github.com/xraph/herald/store/memory"
)

var (
	annTarget   = destination.Target{WebhookID: "ann", Token: "tok"}
	forumTarget = destination.Target{WebhookID: "forum", Token: "tok"}
)

func newSource(t *testing.T, mutate func(*Config)) (*Source, *recorder.Recorder, *memory.Store) {
	t.Helper()
	cfg := Config{Announcement: annTarget, Forum: forumTarget}
	if mutate != nil {
		mutate(&cfg)
	}
	c := recorder.New()
	s := memory.New()
	src, err := New(cfg, c, s)
	if err != nil {
		t.Fatal(err)
	}
	return src, c, s
}

func itemRequest(t *testing.T, kind string, item *Item) *http.Request {
	t.Helper()
	body, err := json.Marshal(item)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/workshop", bytes.NewReader(body))
	if kind != "" {
		req.Header.Set(HeaderEvent, kind)
	}
	return req
}

func eventFor(kind string, item *Item) *event.Event {
	return event.New(Name, kind, item.ID, item)
}

func TestNewRequiresWebhooks(t *testing.T) {
	_, err := New(Config{Announcement: annTarget}, recorder.New(), memory.New())
	if !errors.Is(err, ErrNoWebhooks) {
		t.Fatalf("err = %v, want ErrNoWebhooks", err)
	}
}

func TestAccepts(t *testing.T) {
	src, _, _ := newSource(t, nil)
	for path, want := range map[string]bool{
		"/workshop":      true,
		"/workshop/hook": true,
		"/workshopping":  false,
		"/github":        false,
	} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if got := src.Accepts(req); got != want {
			t.Fatalf("Accepts(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestExtract(t *testing.T) {
	src, _, _ := newSource(t, nil)

	evt, err := src.Extract(itemRequest(t, KindCreated, testItem()))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if evt.Source != Name || evt.Kind != KindCreated || evt.EntityID != "42" {
		t.Fatalf("event = %+v", evt)
	}
	item, err := itemOf(evt)
	if err != nil {
		t.Fatal(err)
	}
	if item.Creator.Name != "Ann" || item.Time.Created != 1700000000 {
		t.Fatalf("item = %+v", item)
	}
	if evt.ID.IsNil() {
		t.Fatal("event id should be assigned")
	}
}

func TestExtractMissingKind(t *testing.T) {
	src, _, _ := newSource(t, nil)
	if _, err := src.Extract(itemRequest(t, "", testItem())); !errors.Is(err, source.ErrMissingKind) {
		t.Fatalf("err = %v, want ErrMissingKind", err)
	}
}

func TestExtractRejectsInvalidItems(t *testing.T) {
	src, _, _ := newSource(t, nil)

	for name, body := range map[string]string{
		"not json":     `{"id":`,
		"missing id":   `{"title":"x","time":{"created":1}}`,
		"empty id":     `{"id":"","title":"x","time":{"created":1}}`,
		"string time":  `{"id":"1","title":"x","time":{"created":"yesterday"}}`,
		"missing time": `{"id":"1","title":"x"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/workshop", bytes.NewBufferString(body))
		req.Header.Set(HeaderEvent, KindCreated)
		if _, err := src.Extract(req); !errors.Is(err, source.ErrBadPayload) {
			t.Fatalf("%s: err = %v, want ErrBadPayload", name, err)
		}
	}
}

func TestExtractBodyLimit(t *testing.T) {
	src, _, _ := newSource(t, func(c *Config) { c.MaxBody = 16 })
	if _, err := src.Extract(itemRequest(t, KindCreated, testItem())); !errors.Is(err, source.ErrBodyTooLarge) {
		t.Fatalf("err = %v, want ErrBodyTooLarge", err)
	}
}

func TestExtractSignature(t *testing.T) {
	src, _, _ := newSource(t, func(c *Config) {
		c.Secret = "s3cret"
		c.SignatureTolerance = time.Minute
	})

	body, _ := json.Marshal(testItem())
	ts := time.Now().Unix()

	req := httptest.NewRequest(http.MethodPost, "/workshop", bytes.NewReader(body))
	req.Header.Set(HeaderEvent, KindCreated)
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderSignature, signature.Sign(body, "s3cret", ts))
	if _, err := src.Extract(req); err != nil {
		t.Fatalf("signed request: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/workshop", bytes.NewReader(body))
	req.Header.Set(HeaderEvent, KindCreated)
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderSignature, signature.Sign(body, "other", ts))
	if _, err := src.Extract(req); !errors.Is(err, source.ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}

	req = itemRequest(t, KindCreated, testItem())
	if _, err := src.Extract(req); !errors.Is(err, signature.ErrMissing) {
		t.Fatalf("err = %v, want ErrMissing", err)
	}
}

func TestRules(t *testing.T) {
	src, _, _ := newSource(t, nil)
	rules := src.Rules()
	if len(rules) != 2 {
		t.Fatalf("rules = %d", len(rules))
	}
	created, updated := rules[0], rules[1]
	if created.Name != KindCreated || !created.Wait || created.OnAcknowledged == nil || created.Target != annTarget {
		t.Fatalf("created rule = %+v", created)
	}
	if updated.Name != KindUpdated || updated.Wait || updated.Mutate == nil || updated.Target != forumTarget {
		t.Fatalf("updated rule = %+v", updated)
	}
}

func TestAnnounceStopsWithoutThread(t *testing.T) {
	src, c, s := newSource(t, nil)
	c.SetAck(func(to destination.Target, _ *message.Message) (destination.Ack, error) {
		return destination.Ack{MessageID: "m", ChannelID: "ch"}, nil
	})

	evt := eventFor(KindCreated, testItem())
	err := src.announce(context.Background(), evt, destination.Ack{MessageID: "m0", ChannelID: "ch0"})
	if !errors.Is(err, herald.ErrMissingAcknowledgement) {
		t.Fatalf("err = %v, want ErrMissingAcknowledgement", err)
	}

	ops := c.Ops()
	if len(ops) != 2 || ops[0] != recorder.OpPublish || ops[1] != recorder.OpPostWait {
		t.Fatalf("ops = %v", ops)
	}
	if _, err := s.GetCorrelation(context.Background(), "42"); !errors.Is(err, herald.ErrCorrelationNotFound) {
		t.Fatalf("correlation err = %v", err)
	}
}

func TestAnnounceOverwritesCorrelation(t *testing.T) {
	src, _, s := newSource(t, nil)
	ctx := context.Background()
	if err := s.PutCorrelation(ctx, &correlation.Entry{EntityID: "42", ThreadID: "old"}); err != nil {
		t.Fatal(err)
	}

	if err := src.announce(ctx, eventFor(KindCreated, testItem()), destination.Ack{MessageID: "m0", ChannelID: "ch0"}); err != nil {
		t.Fatalf("announce: %v", err)
	}
	entry, err := s.GetCorrelation(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if entry.ThreadID == "old" || entry.Source != Name {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestAttachThreadBackfillPostError(t *testing.T) {
	src, c, s := newSource(t, nil)
	c.FailPosts(errors.New("unavailable"))

	r := src.Rules()[1].Resolve()
	if err := src.attachThread(context.Background(), eventFor(KindUpdated, testItem()), r); err != nil {
		t.Fatalf("attachThread: %v", err)
	}
	if !r.Cancelled || r.Backfilled {
		t.Fatalf("resolved = %+v", r)
	}
	if _, err := s.GetCorrelation(context.Background(), "42"); !errors.Is(err, herald.ErrCorrelationNotFound) {
		t.Fatalf("correlation err = %v", err)
	}
}

type brokenStore struct{ *memory.Store }

func (brokenStore) GetCorrelation(context.Context, string) (*correlation.Entry, error) {
	return nil, errors.New("connection reset")
}

func TestAttachThreadStoreError(t *testing.T) {
	c := recorder.New()
	src, err := New(Config{Announcement: annTarget, Forum: forumTarget}, c, brokenStore{memory.New()})
	if err != nil {
		t.Fatal(err)
	}
	r := src.Rules()[1].Resolve()
	if err := src.attachThread(context.Background(), eventFor(KindUpdated, testItem()), r); err == nil {
		t.Fatal("expected store error")
	}
	if len(c.Calls()) != 0 {
		t.Fatalf("calls = %v", c.Ops())
	}
}

func TestAttachThreadLeavesTemplate(t *testing.T) {
	src, _, s := newSource(t, nil)
	ctx := context.Background()
	if err := s.PutCorrelation(ctx, &correlation.Entry{EntityID: "42", ThreadID: "T9"}); err != nil {
		t.Fatal(err)
	}

	tmpl := src.Rules()[1]
	r := tmpl.Resolve()
	if err := src.attachThread(ctx, eventFor(KindUpdated, testItem()), r); err != nil {
		t.Fatal(err)
	}
	if r.Target.ThreadID != "T9" {
		t.Fatalf("resolved thread = %q", r.Target.ThreadID)
	}
	if tmpl.Target.ThreadID != "" {
		t.Fatalf("rule template changed: %+v", tmpl.Target)
	}
}

func TestComposeRejectsForeignData(t *testing.T) {
	src, _, _ := newSource(t, nil)
	evt := eventFor(KindCreated, testItem())
	evt.Data = map[string]any{"id": "42"}
	if _, err := src.Rules()[0].Compose(evt); err == nil {
		t.Fatal("expected error for foreign event data")
	}
}

func TestNewWarnsWithoutGuild(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := Config{Announcement: annTarget, Forum: forumTarget}
	if _, err := New(cfg, recorder.New(), memory.New(), WithLogger(logger)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "View post") {
		t.Fatalf("expected a guild warning, got %q", buf.String())
	}

	buf.Reset()
	cfg.Composer.GuildID = "g1"
	if _, err := New(cfg, recorder.New(), memory.New(), WithLogger(logger)); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}
