package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/trustlens/trustlens/internal/domain/analysis"
)

type fakeStore struct {
	records map[string]*analysis.Record
	getErr  error
	putErr  error
	gets    int
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*analysis.Record{}}
}

func (s *fakeStore) Get(_ context.Context, hash string) (*analysis.Record, error) {
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	rec, ok := s.records[hash]
	if !ok {
		return nil, analysis.ErrNotFound
	}
	return rec, nil
}

func (s *fakeStore) Put(_ context.Context, rec *analysis.Record) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.records[rec.Hash] = rec
	return nil
}

func testRecord(hash string) *analysis.Record {
	return &analysis.Record{
		Hash:      hash,
		Type:      analysis.ContentTypeText,
		Analysis:  json.RawMessage(`{"verdict":"Reliable"}`),
		CreatedAt: time.Now().UTC(),
	}
}

func TestCache_MissThenHit(t *testing.T) {
	store := newFakeStore()
	c := New(store, time.Minute)
	ctx := context.Background()

	if _, found := c.Lookup(ctx, "abc"); found {
		t.Fatal("expected miss on empty cache")
	}

	c.Save(ctx, testRecord("abc"))

	rec, found := c.Lookup(ctx, "abc")
	if !found {
		t.Fatal("expected hit after save")
	}
	if rec.Hash != "abc" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestCache_BackingStoreHitPromoted(t *testing.T) {
	store := newFakeStore()
	store.records["abc"] = testRecord("abc")
	c := New(store, time.Minute)
	ctx := context.Background()

	if _, found := c.Lookup(ctx, "abc"); !found {
		t.Fatal("expected hit from backing store")
	}
	// Second lookup should be served from memory.
	if _, found := c.Lookup(ctx, "abc"); !found {
		t.Fatal("expected memory hit")
	}
	if store.gets != 1 {
		t.Errorf("expected 1 backing-store get, got %d", store.gets)
	}
}

func TestCache_StoreFailureIsMiss(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	c := New(store, time.Minute)

	if _, found := c.Lookup(context.Background(), "abc"); found {
		t.Fatal("backing-store failure must surface as a miss")
	}
}

func TestCache_SaveBestEffort(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("connection refused")
	c := New(store, time.Minute)
	ctx := context.Background()

	// Must not panic or propagate; the memory layer still serves the record.
	c.Save(ctx, testRecord("abc"))
	if _, found := c.Lookup(ctx, "abc"); !found {
		t.Fatal("expected memory hit despite store failure")
	}
}

func TestCache_IdempotentDoubleSave(t *testing.T) {
	store := newFakeStore()
	c := New(store, time.Minute)
	ctx := context.Background()

	rec := testRecord("abc")
	c.Save(ctx, rec)
	c.Save(ctx, rec)

	got, found := c.Lookup(ctx, "abc")
	if !found {
		t.Fatal("expected hit")
	}
	if string(got.Analysis) != string(rec.Analysis) || got.Type != rec.Type {
		t.Errorf("double save changed the record: %+v", got)
	}
}

func TestCache_NilStore(t *testing.T) {
	c := New(nil, time.Minute)
	ctx := context.Background()

	if _, found := c.Lookup(ctx, "abc"); found {
		t.Fatal("expected miss with nil store")
	}
	c.Save(ctx, testRecord("abc"))
	if _, found := c.Lookup(ctx, "abc"); !found {
		t.Fatal("expected memory-only hit")
	}
}
