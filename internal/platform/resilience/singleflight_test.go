package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var calls atomic.Int32

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, _ := g.Do("key", func() (any, error) {
				calls.Add(1)
				time.Sleep(10 * time.Millisecond)
				return 42, nil
			})
			if err != nil || v != 42 {
				t.Errorf("Do returned %v, %v", v, err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("fn called %d times, want 1", got)
	}
}

func TestSingleFlight_KeyReusableAfterCompletion(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var calls atomic.Int32

	for i := 0; i < 2; i++ {
		if _, err, _ := g.Do("key", func() (any, error) {
			calls.Add(1)
			return nil, nil
		}); err != nil {
			t.Fatalf("Do error: %v", err)
		}
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("fn called %d times, want 2 sequential calls", got)
	}
}
