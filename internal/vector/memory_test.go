package vector

import (
	"context"
	"errors"
	"testing"
)

func unitVec(dims int, hot int) []float32 {
	v := make([]float32, dims)
	v[hot] = 1
	return v
}

func TestMemoryIndex_SearchRanksByScore(t *testing.T) {
	idx, err := NewMemoryIndex(4)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	entries := []Entry{
		{ID: "far", Vector: unitVec(4, 3), Text: "far away"},
		{ID: "close", Vector: []float32{0.9, 0.1, 0, 0}, Text: "close match"},
		{ID: "exact", Vector: unitVec(4, 0), Text: "exact match"},
	}
	if err := idx.Add(ctx, entries); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := idx.Search(ctx, unitVec(4, 0), 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Text != "exact match" || results[1].Text != "close match" {
		t.Errorf("ranking = [%s, %s]", results[0].Text, results[1].Text)
	}
	if results[0].Rank != 1 || results[1].Rank != 2 {
		t.Errorf("ranks = [%d, %d]", results[0].Rank, results[1].Rank)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("scores not descending: %v < %v", results[0].Score, results[1].Score)
	}
}

func TestMemoryIndex_TieBreakKeepsInsertionOrder(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	defer idx.Close()

	ctx := context.Background()
	// Same vector three times: identical scores against any query.
	same := []float32{1, 0}
	err := idx.Add(ctx, []Entry{
		{ID: "first", Vector: same, Text: "first"},
		{ID: "second", Vector: same, Text: "second"},
		{ID: "third", Vector: same, Text: "third"},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := idx.Search(ctx, same, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if results[i].Text != w {
			t.Errorf("results[%d].Text = %q, want %q", i, results[i].Text, w)
		}
	}
}

func TestMemoryIndex_KLargerThanSize(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	defer idx.Close()

	ctx := context.Background()
	_ = idx.Add(ctx, []Entry{{ID: "only", Vector: []float32{1, 0}, Text: "only"}})

	results, err := idx.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestMemoryIndex_EmptySearchReturnsEmpty(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	defer idx.Close()

	results, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search on empty index: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("got %v, want empty non-nil slice", results)
	}
}

func TestMemoryIndex_DimensionMismatch(t *testing.T) {
	idx, _ := NewMemoryIndex(4)
	defer idx.Close()

	ctx := context.Background()
	err := idx.Add(ctx, []Entry{{ID: "bad", Vector: []float32{1, 0}}})
	var idxErr *IndexError
	if !errors.As(err, &idxErr) {
		t.Fatalf("Add error = %v, want IndexError", err)
	}
	if _, err := idx.Search(ctx, []float32{1, 0}, 1); !errors.As(err, &idxErr) {
		t.Errorf("Search error = %v, want IndexError", err)
	}
}

func TestMemoryIndex_Count(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	defer idx.Close()

	ctx := context.Background()
	if n, _ := idx.Count(ctx); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
	_ = idx.Add(ctx, []Entry{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{0, 1}},
	})
	if n, _ := idx.Count(ctx); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}
