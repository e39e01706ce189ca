package secured

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheComputesOnceUnderRace(t *testing.T) {
	c := newResolutionCache()
	key := methodClassKey{method: MethodRef{Type: "Svc", Name: "Do"}}

	var computations atomic.Int64
	compute := func() ([]string, error) {
		computations.Add(1)
		time.Sleep(5 * time.Millisecond) // widen the race window
		return []string{"ADMIN"}, nil
	}

	var wg sync.WaitGroup
	results := make([][]string, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			perms, err := c.getOrCompute(key, compute)
			if err != nil {
				t.Errorf("getOrCompute: %v", err)
			}
			results[i] = perms
		}(i)
	}
	wg.Wait()

	if got := computations.Load(); got != 1 {
		t.Fatalf("expected exactly one computation, got %d", got)
	}
	for i, perms := range results {
		if len(perms) != 1 || perms[0] != "ADMIN" {
			t.Fatalf("caller %d observed inconsistent value %v", i, perms)
		}
	}
	if c.size() != 1 {
		t.Fatalf("expected one entry, got %d", c.size())
	}
}

func TestCacheMemoizesErrors(t *testing.T) {
	c := newResolutionCache()
	key := methodClassKey{method: MethodRef{Type: "Svc", Name: "Do"}}
	wantErr := errors.New("broken metadata")

	var calls int
	for i := 0; i < 3; i++ {
		_, err := c.getOrCompute(key, func() ([]string, error) {
			calls++
			return nil, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("iteration %d: expected memoized error, got %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one computation despite error, got %d", calls)
	}
}

func TestCacheKeysAreDistinct(t *testing.T) {
	c := newResolutionCache()
	compute := func(v string) func() ([]string, error) {
		return func() ([]string, error) { return []string{v}, nil }
	}

	a, _ := c.getOrCompute(methodClassKey{method: MethodRef{Type: "Svc", Name: "Do"}}, compute("a"))
	b, _ := c.getOrCompute(methodClassKey{method: MethodRef{Type: "Svc", Name: "Do"}, runtimeType: "Impl"}, compute("b"))
	if a[0] != "a" || b[0] != "b" {
		t.Fatalf("keys collided: %v %v", a, b)
	}
	if c.size() != 2 {
		t.Fatalf("expected two entries, got %d", c.size())
	}
}
