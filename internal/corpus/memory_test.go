package corpus

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStoreSnapshotEmpty(t *testing.T) {
	store := NewMemoryStore()
	stats, err := store.Snapshot(context.Background(), []string{"кот"})
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if stats.DocumentCount != 0 {
		t.Errorf("DocumentCount = %d, want 0", stats.DocumentCount)
	}
	if stats.DocumentFrequency["кот"] != 0 {
		t.Errorf("df(кот) = %d, want 0", stats.DocumentFrequency["кот"])
	}
}

func TestMemoryStoreRegisterIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.RegisterDocument(ctx, "doc-1", []string{"кот", "окно"}); err != nil {
			t.Fatalf("RegisterDocument: %v", err)
		}
	}

	stats, err := store.Snapshot(ctx, []string{"кот", "окно"})
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if stats.DocumentCount != 1 {
		t.Errorf("DocumentCount = %d, want 1", stats.DocumentCount)
	}
	if stats.DocumentFrequency["кот"] != 1 {
		t.Errorf("df(кот) = %d, want 1", stats.DocumentFrequency["кот"])
	}
}

func TestMemoryStoreDocFreqNeverExceedsDocCount(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		terms := []string{"облако"}
		if i%2 == 0 {
			terms = append(terms, "гроза")
		}
		if err := store.RegisterDocument(ctx, fmt.Sprintf("doc-%d", i), terms); err != nil {
			t.Fatalf("RegisterDocument: %v", err)
		}

		stats, err := store.Snapshot(ctx, terms)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		for term, df := range stats.DocumentFrequency {
			if df > stats.DocumentCount {
				t.Fatalf("df(%s) = %d exceeds N = %d", term, df, stats.DocumentCount)
			}
		}
	}
}

func TestMemoryStoreConcurrentRegistration(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.RegisterDocument(ctx, fmt.Sprintf("doc-%d", i), []string{"кот"})
		}(i)
	}
	wg.Wait()

	stats, err := store.Snapshot(ctx, []string{"кот"})
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if stats.DocumentCount != 50 {
		t.Errorf("DocumentCount = %d, want 50", stats.DocumentCount)
	}
	if stats.DocumentFrequency["кот"] != 50 {
		t.Errorf("df(кот) = %d, want 50", stats.DocumentFrequency["кот"])
	}
}
