package track

import (
	"sync"
	"testing"
)

func TestRegistry_RegisterResolve(t *testing.T) {
	r := NewRegistry()

	a := r.Register("/data/uploads/1_a.mp3")
	b := r.Register("/data/uploads/2_b.mp3")
	if a == b {
		t.Fatalf("ids must be unique, both %q", a)
	}

	got, ok := r.Resolve(a)
	if !ok || got != "/data/uploads/1_a.mp3" {
		t.Errorf("Resolve(a) = %q, %v", got, ok)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}

func TestRegistry_Resolve_unknown(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Resolve("missing"); ok {
		t.Error("expected ok false for unknown id")
	}
}

func TestRegistry_concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := r.Register("/x.mp3")
			if _, ok := r.Resolve(id); !ok {
				t.Errorf("registered id %q did not resolve", id)
			}
		}()
	}
	wg.Wait()
	if r.Len() != 50 {
		t.Errorf("Len = %d, want 50", r.Len())
	}
}
