// Package contract holds reusable checks every adapter's tests run, so all
// sources honor the same normalized shape and error taxonomy.
package contract

import (
	"context"
	"testing"

	"contentgw/internal/source"
)

// SearchTest runs a search and validates every returned item.
type SearchTest struct {
	Name     string
	Adapter  source.Adapter
	Query    source.SearchQuery
	MinItems int
	// Validate runs after the shape checks.
	Validate func(t *testing.T, items []source.Item)
}

func (st *SearchTest) Run(t *testing.T) {
	t.Helper()
	t.Run(st.Name, func(t *testing.T) {
		items, err := st.Adapter.Search(context.Background(), st.Query)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(items) < st.MinItems {
			t.Fatalf("expected at least %d items, got %d", st.MinItems, len(items))
		}
		if st.Query.Limit > 0 && len(items) > st.Query.Limit {
			t.Errorf("limit %d exceeded: %d items", st.Query.Limit, len(items))
		}
		CheckItems(t, st.Adapter.ID(), items)
		if st.Validate != nil {
			st.Validate(t, items)
		}
	})
}

// CheckItems asserts the normalized shape invariants.
func CheckItems(t *testing.T, sourceID string, items []source.Item) {
	t.Helper()
	for i, item := range items {
		if err := item.Validate(); err != nil {
			t.Errorf("item %d: %v", i, err)
		}
		if item.Source != sourceID {
			t.Errorf("item %d: expected source %s, got %s", i, sourceID, item.Source)
		}
		if item.Tags == nil {
			t.Errorf("item %d: tags must be non-nil", i)
		}
		if item.MediaRefs == nil {
			t.Errorf("item %d: media refs must be non-nil", i)
		}
		for _, m := range item.MediaRefs {
			if m.URL == "" || m.Kind == "" {
				t.Errorf("item %d: empty media ref %+v", i, m)
			}
		}
	}
}

// ErrorTest validates that a failing call follows the taxonomy.
type ErrorTest struct {
	Name          string
	Call          func(ctx context.Context) error
	ExpectedKind  source.ErrorKind
	ExpectedRetry bool
}

func (et *ErrorTest) Run(t *testing.T) {
	t.Helper()
	t.Run(et.Name, func(t *testing.T) {
		err := et.Call(context.Background())
		if err == nil {
			t.Fatal("expected error but got none")
		}
		if kind := source.KindOf(err); kind != et.ExpectedKind {
			t.Errorf("expected kind %s, got %s (%v)", et.ExpectedKind, kind, err)
		}
		if retry := source.IsRetryable(err); retry != et.ExpectedRetry {
			t.Errorf("expected retryable=%v, got %v", et.ExpectedRetry, retry)
		}
	})
}
