package record

import "testing"

func TestListOptsMatches(t *testing.T) {
	failed := StateFailed
	r := &Record{Source: "workshop", EntityID: "42", State: StateDelivered}

	tests := []struct {
		name string
		opts ListOpts
		want bool
	}{
		{"no filters", ListOpts{}, true},
		{"source", ListOpts{Source: "workshop"}, true},
		{"other source", ListOpts{Source: "github"}, false},
		{"entity", ListOpts{EntityID: "42"}, true},
		{"other entity", ListOpts{EntityID: "7"}, false},
		{"state mismatch", ListOpts{State: &failed}, false},
		{"combined", ListOpts{Source: "workshop", EntityID: "42"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Matches(r); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
