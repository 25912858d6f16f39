package tabular

import (
	"context"
	"sync"
)

// DecodeFunc matches Decode and lets callers put a cache in front of it.
type DecodeFunc func(data []byte, declaredType, fileName string) Table

// Viewer runs decodes in the background for one file-viewing session. Each
// Load supersedes every earlier one: only the newest requested decode is
// ever applied, whatever order the results resolve in.
type Viewer struct {
	decode DecodeFunc

	mu        sync.Mutex
	requested uint64
	applied   uint64
	loaded    bool
	table     Table
	done      chan struct{}
}

func NewViewer(decode DecodeFunc) *Viewer {
	if decode == nil {
		decode = Decode
	}
	done := make(chan struct{})
	close(done)
	return &Viewer{decode: decode, done: done}
}

// Load starts decoding data and returns the request sequence number.
func (v *Viewer) Load(data []byte, declaredType, fileName string) uint64 {
	v.mu.Lock()
	v.requested++
	seq := v.requested
	done := make(chan struct{})
	v.done = done
	v.mu.Unlock()

	go func() {
		t := v.decode(data, declaredType, fileName)
		v.mu.Lock()
		if seq == v.requested {
			v.applied = seq
			v.table = t
			v.loaded = true
		}
		v.mu.Unlock()
		close(done)
	}()
	return seq
}

// Reset drops the current table and supersedes any decode in flight.
func (v *Viewer) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.requested++
	v.applied = v.requested
	v.loaded = false
	v.table = Table{}
	done := make(chan struct{})
	close(done)
	v.done = done
}

// Current returns the latest applied table, whether anything has been
// applied yet, and whether a newer decode is still pending.
func (v *Viewer) Current() (t Table, ok bool, loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.table, v.loaded, v.applied < v.requested
}

// Wait blocks until the newest requested decode has resolved and returns
// its table.
func (v *Viewer) Wait(ctx context.Context) (Table, error) {
	for {
		v.mu.Lock()
		seq := v.requested
		done := v.done
		v.mu.Unlock()

		select {
		case <-ctx.Done():
			return Table{}, ctx.Err()
		case <-done:
		}

		v.mu.Lock()
		if v.requested == seq {
			t := v.table
			v.mu.Unlock()
			return t, nil
		}
		v.mu.Unlock()
	}
}
