// Package resourcegate provides C7: counted semaphores for the LLM, FFmpeg,
// and embedding slots, plus a transient-error retry wrapper for database
// operations (spec.md §4.7).
package resourcegate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/five82/clipreel/internal/svcerr"
)

const stageName = "resourcegate"

// Gate is a single named, counted resource slot with an acquisition timeout.
type Gate struct {
	name    string
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewGate constructs a counted semaphore gate. capacity must be >= 1.
func NewGate(name string, capacity int, timeout time.Duration) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{name: name, sem: semaphore.NewWeighted(int64(capacity)), timeout: timeout}
}

// Acquire blocks until a slot is free or the gate's acquisition timeout
// elapses, whichever comes first. The returned release func must be called
// exactly once.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	acquireCtx := ctx
	var cancel context.CancelFunc
	if g.timeout > 0 {
		acquireCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if err := g.sem.Acquire(acquireCtx, 1); err != nil {
		return nil, svcerr.Wrap(svcerr.ErrTransient, stageName, "acquire",
			fmt.Sprintf("%s slot acquisition timed out", g.name), err)
	}
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		g.sem.Release(1)
	}
	return release, nil
}

// ResourceGate bundles the three named slots the pipeline borrows from,
// constructed once per run and passed to every stage.
type ResourceGate struct {
	FFmpeg    *Gate
	LLM       *Gate
	Embedding *Gate
}

// New builds a ResourceGate from the configured slot counts and acquisition
// timeouts (spec.md §4.7: FFmpeg default 2 slots/60s timeout, LLM default 1
// slot/30s timeout; the embedding slot is always capacity 1 since the local
// model must remain resident for the whole batch).
func New(ffmpegSlots, llmSlots int, ffmpegTimeout, llmTimeout time.Duration) *ResourceGate {
	return &ResourceGate{
		FFmpeg:    NewGate("ffmpeg", ffmpegSlots, ffmpegTimeout),
		LLM:       NewGate("llm", llmSlots, llmTimeout),
		Embedding: NewGate("embedding", 1, 0),
	}
}
