// Package lock provides a per-key mutual exclusion primitive with a
// bounded acquisition wait.  The booking core uses it to serialize the
// capacity check-and-reserve for a (date,time) bucket, the overlap
// check-and-assign for a table, and the OTP lifecycle for a subject.
// Requests on distinct keys proceed fully in parallel; requests on the
// same key queue behind one another and fail with ErrBusy once the
// wait exceeds the configured timeout.
package lock

import (
    "context"
    "errors"
    "sync"
    "time"
)

// ErrBusy is returned when a lock could not be acquired within the
// configured timeout.  Handlers should translate this into an HTTP
// 503 response.
var ErrBusy = errors.New("lock busy")

// Keyed is a set of named mutexes created on demand.  Entries are
// reference counted and removed again once the last waiter releases,
// so the map does not grow with the number of distinct keys seen over
// the process lifetime.
type Keyed struct {
    mu      sync.Mutex
    entries map[string]*entry
    timeout time.Duration
}

type entry struct {
    ch   chan struct{} // capacity 1; a buffered send holds the lock
    refs int           // holders plus waiters, for cleanup
}

// New returns a Keyed lock set whose Acquire calls give up after the
// provided timeout.  A non-positive timeout falls back to one second.
func New(timeout time.Duration) *Keyed {
    if timeout <= 0 {
        timeout = time.Second
    }
    return &Keyed{
        entries: make(map[string]*entry),
        timeout: timeout,
    }
}

// Acquire blocks until the lock for key is held, the timeout elapses
// or ctx is cancelled.  On success it returns a release function that
// must be called exactly once; on timeout it returns ErrBusy, and on
// context cancellation the context's error.
func (k *Keyed) Acquire(ctx context.Context, key string) (func(), error) {
    k.mu.Lock()
    e, ok := k.entries[key]
    if !ok {
        e = &entry{ch: make(chan struct{}, 1)}
        k.entries[key] = e
    }
    e.refs++
    k.mu.Unlock()

    timer := time.NewTimer(k.timeout)
    defer timer.Stop()

    select {
    case e.ch <- struct{}{}:
        var once sync.Once
        release := func() {
            once.Do(func() {
                <-e.ch
                k.unref(key, e)
            })
        }
        return release, nil
    case <-timer.C:
        k.unref(key, e)
        return nil, ErrBusy
    case <-ctx.Done():
        k.unref(key, e)
        return nil, ctx.Err()
    }
}

// unref drops one reference to the entry and deletes it once nobody
// holds or waits on it anymore.
func (k *Keyed) unref(key string, e *entry) {
    k.mu.Lock()
    e.refs--
    if e.refs == 0 {
        delete(k.entries, key)
    }
    k.mu.Unlock()
}
