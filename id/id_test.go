package id

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewDispatchIDPrefix(t *testing.T) {
	d := NewDispatchID()
	if d.Prefix() != PrefixDispatch {
		t.Fatalf("prefix = %q, want %q", d.Prefix(), PrefixDispatch)
	}
	if !strings.HasPrefix(d.String(), "dsp_") {
		t.Fatalf("unexpected string %q", d.String())
	}
}

func TestParseWithPrefixRejectsOtherKinds(t *testing.T) {
	task := NewTaskID()
	if _, err := ParseDispatchID(task.String()); err == nil {
		t.Fatal("expected prefix mismatch error")
	}

	got, err := ParseWithPrefix(task.String(), PrefixTask)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != task.String() {
		t.Fatalf("got %q, want %q", got, task)
	}
}

func TestNilID(t *testing.T) {
	if !Nil.IsNil() {
		t.Fatal("Nil should report IsNil")
	}
	if Nil.String() != "" {
		t.Fatalf("Nil.String() = %q", Nil.String())
	}
	v, err := Nil.Value()
	if err != nil || v != nil {
		t.Fatalf("Nil.Value() = %v, %v", v, err)
	}
}

func TestJSONText(t *testing.T) {
	type wrap struct {
		ID ID `json:"id"`
	}
	in := wrap{ID: NewDispatchID()}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out wrap
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	if out.ID.String() != in.ID.String() {
		t.Fatalf("got %q, want %q", out.ID, in.ID)
	}
}

func TestScan(t *testing.T) {
	src := NewDispatchID().String()

	var got ID
	if err := got.Scan(src); err != nil {
		t.Fatal(err)
	}
	if got.String() != src {
		t.Fatalf("got %q", got)
	}

	if err := got.Scan(nil); err != nil || !got.IsNil() {
		t.Fatalf("scan nil: %v %v", got, err)
	}
	if err := got.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}
}
