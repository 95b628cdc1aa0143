package rule

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateRule is returned when a rule name is registered twice.
	ErrDuplicateRule = errors.New("rule: duplicate rule name")

	// ErrInvalidRule is returned for a rule without a name or composer.
	ErrInvalidRule = errors.New("rule: rule needs a name and a composer")
)

// Table maps event kinds to rules. Exact names win over patterns; patterns
// are tried in registration order.
//
// A Table is filled at startup and read concurrently afterwards; it is not
// safe to Add while dispatching.
type Table struct {
	exact    map[string]*Rule
	patterns []*Rule
}

// NewTable builds a table from rules.
func NewTable(rules ...*Rule) (*Table, error) {
	t := &Table{exact: make(map[string]*Rule)}
	for _, r := range rules {
		if err := t.Add(r); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add registers r.
func (t *Table) Add(r *Rule) error {
	if r == nil || r.Name == "" || r.Compose == nil {
		return ErrInvalidRule
	}
	if t.exact == nil {
		t.exact = make(map[string]*Rule)
	}

	if isPattern(r.Name) {
		for _, p := range t.patterns {
			if p.Name == r.Name {
				return fmt.Errorf("%w: %s", ErrDuplicateRule, r.Name)
			}
		}
		t.patterns = append(t.patterns, r)
		return nil
	}

	if _, ok := t.exact[r.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, r.Name)
	}
	t.exact[r.Name] = r
	return nil
}

// Find returns the rule for kind. A miss is a normal outcome.
func (t *Table) Find(kind string) (*Rule, bool) {
	if t == nil {
		return nil, false
	}
	if r, ok := t.exact[kind]; ok {
		return r, true
	}
	for _, r := range t.patterns {
		if Match(r.Name, kind) {
			return r, true
		}
	}
	return nil, false
}

// Names lists registered names: exact names first (unordered), then patterns
// in evaluation order.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.exact)+len(t.patterns))
	for name := range t.exact {
		out = append(out, name)
	}
	for _, r := range t.patterns {
		out = append(out, r.Name)
	}
	return out
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.exact) + len(t.patterns)
}

func isPattern(name string) bool {
	return strings.Contains(name, "*")
}
