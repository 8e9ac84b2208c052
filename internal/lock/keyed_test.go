package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	k := New(time.Second)
	release, err := k.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()

	// The key is free again.
	release, err = k.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}
	release()
}

func TestAcquireTimesOutWithBusy(t *testing.T) {
	k := New(20 * time.Millisecond)
	release, err := k.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	start := time.Now()
	if _, err := k.Acquire(context.Background(), "a"); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Acquire: got %v, want ErrBusy", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("Acquire returned before the timeout elapsed")
	}
}

func TestDistinctKeysDoNotBlock(t *testing.T) {
	k := New(10 * time.Millisecond)
	ra, err := k.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire a: %v", err)
	}
	defer ra()

	rb, err := k.Acquire(context.Background(), "b")
	if err != nil {
		t.Fatalf("Acquire b while a is held: %v", err)
	}
	rb()
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	k := New(time.Minute)
	release, err := k.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if _, err := k.Acquire(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	k := New(50 * time.Millisecond)
	release, err := k.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()
	release() // second call must be a no-op, not a double unlock

	r2, err := k.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire after double release: %v", err)
	}
	defer r2()
	if _, err := k.Acquire(context.Background(), "a"); !errors.Is(err, ErrBusy) {
		t.Fatal("double release left the lock acquirable twice")
	}
}

func TestMutualExclusionUnderContention(t *testing.T) {
	k := New(5 * time.Second)
	const workers = 50
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := k.Acquire(context.Background(), "shared")
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			// Unsynchronized increment; only the lock protects it.
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			release()
		}()
	}
	wg.Wait()
	if counter != workers {
		t.Fatalf("counter = %d, want %d", counter, workers)
	}
}

func TestEntriesAreReclaimed(t *testing.T) {
	k := New(time.Second)
	for i := 0; i < 100; i++ {
		release, err := k.Acquire(context.Background(), "key")
		if err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		release()
	}
	k.mu.Lock()
	n := len(k.entries)
	k.mu.Unlock()
	if n != 0 {
		t.Fatalf("%d entries left after all releases, want 0", n)
	}
}
