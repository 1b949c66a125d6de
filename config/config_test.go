package config

import "testing"

func TestBindingForRoundTrip(t *testing.T) {
	c := DefaultConfig()
	c.SetBinding(ChunkBinding{Row: 2, Col: 3, ChunkIndex: 1, Channel: 1})

	got, ok := c.BindingFor(2, 3)
	if !ok {
		t.Fatal("expected binding at (2,3) to be found")
	}
	if got.ChunkIndex != 1 {
		t.Fatalf("expected chunk index 1, got %d", got.ChunkIndex)
	}

	if _, ok := c.BindingFor(0, 0); ok {
		t.Fatal("expected no binding at (0,0)")
	}
}

func TestSetBindingUpdatesExisting(t *testing.T) {
	c := DefaultConfig()
	c.SetBinding(ChunkBinding{Row: 2, Col: 3, ChunkIndex: 1})
	c.SetBinding(ChunkBinding{Row: 2, Col: 3, ChunkIndex: 5})

	if len(c.Bindings) != 1 {
		t.Fatalf("expected a single binding entry after update, got %d", len(c.Bindings))
	}
	got, _ := c.BindingFor(2, 3)
	if got.ChunkIndex != 5 {
		t.Fatalf("expected updated chunk index 5, got %d", got.ChunkIndex)
	}
}
