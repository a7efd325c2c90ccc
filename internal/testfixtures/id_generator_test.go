package testfixtures

import (
	"sync"
	"testing"
)

func TestIDGenerator(t *testing.T) {
	t.Parallel()

	t.Run("produces a deterministic sequence", func(t *testing.T) {
		t.Parallel()

		gen := NewIDGenerator("event")
		if got := gen.Next(); got != "event-1" {
			t.Fatalf("expected event-1, got %q", got)
		}
		if got := gen.Next(); got != "event-2" {
			t.Fatalf("expected event-2, got %q", got)
		}
	})

	t.Run("uses a default prefix", func(t *testing.T) {
		t.Parallel()

		gen := NewIDGenerator("")
		if got := gen.Next(); got != "id-1" {
			t.Fatalf("expected id-1, got %q", got)
		}
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		gen := NewIDGenerator("session")
		const workers = 8
		const perWorker = 50

		var wg sync.WaitGroup
		seen := make(chan string, workers*perWorker)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					seen <- gen.Next()
				}
			}()
		}
		wg.Wait()
		close(seen)

		unique := make(map[string]struct{}, workers*perWorker)
		for id := range seen {
			if _, dup := unique[id]; dup {
				t.Fatalf("duplicate identifier %q", id)
			}
			unique[id] = struct{}{}
		}
		if len(unique) != workers*perWorker {
			t.Fatalf("expected %d identifiers, got %d", workers*perWorker, len(unique))
		}
	})
}
