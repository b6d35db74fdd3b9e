package store

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

type item struct {
	url  string
	note string
}

func newItemStore() *Store[item] {
	return New[item](func(i item) string { return i.url })
}

func TestAppendUnique(t *testing.T) {
	t.Parallel()

	s := newItemStore()

	if !s.AppendUnique("oracle", item{url: "http://a/", note: "first"}) {
		t.Fatal("expected first append to succeed")
	}
	if s.AppendUnique("oracle", item{url: "http://a/", note: "second"}) {
		t.Error("expected duplicate key to be dropped")
	}
	if !s.AppendUnique("symfony", item{url: "http://a/"}) {
		t.Error("expected same key in another category to be accepted")
	}

	got := s.Get("oracle")
	if len(got) != 1 {
		t.Fatalf("expected 1 oracle item, got %d", len(got))
	}
	if got[0].note != "first" {
		t.Errorf("expected first occurrence to be kept, got %q", got[0].note)
	}
	if !s.Has("oracle", "http://a/") {
		t.Error("expected Has to report the stored key")
	}
}

func TestAppendKeepsDuplicates(t *testing.T) {
	t.Parallel()

	s := newItemStore()
	s.Append("credit_cards", item{url: "http://a/"})
	s.Append("credit_cards", item{url: "http://a/"})

	if got := s.Len(); got != 2 {
		t.Errorf("expected 2 items, got %d", got)
	}
}

func TestCommit(t *testing.T) {
	t.Parallel()

	s := newItemStore()
	s.AppendUnique("oracle", item{url: "http://dup/"})

	n := s.Commit([]Entry[item]{
		{Category: "credit_cards", Item: item{url: "http://x/", note: "1"}},
		{Category: "credit_cards", Item: item{url: "http://x/", note: "2"}},
		{Category: "oracle", Item: item{url: "http://dup/"}, Unique: true},
		{Category: "oracle", Item: item{url: "http://new/"}, Unique: true},
	})
	if n != 3 {
		t.Errorf("expected 3 stored entries, got %d", n)
	}

	if got := s.Commit(nil); got != 0 {
		t.Errorf("expected empty commit to store nothing, got %d", got)
	}

	cats := s.Categories()
	if len(cats) != 2 || cats[0] != "oracle" || cats[1] != "credit_cards" {
		t.Errorf("unexpected category order: %v", cats)
	}
	if got := len(s.All()); got != 4 {
		t.Errorf("expected 4 items overall, got %d", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := newItemStore()
	s.Append("c", item{url: "u"})

	got := s.Get("c")
	got[0].note = "mutated"

	if s.Get("c")[0].note != "" {
		t.Error("expected Get to return a copy")
	}
	if s.Get("missing") != nil {
		t.Error("expected nil for an unknown category")
	}
}

func TestConcurrentAppendUnique(t *testing.T) {
	t.Parallel()

	const workers = 32
	const keys = 100

	s := newItemStore()
	var added atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < keys; k++ {
				if s.AppendUnique("symfony", item{url: fmt.Sprintf("http://host/%d", k)}) {
					added.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if got := added.Load(); got != keys {
		t.Errorf("expected %d successful appends, got %d", keys, got)
	}
	if got := len(s.Get("symfony")); got != keys {
		t.Errorf("expected %d stored items, got %d", keys, got)
	}
}
