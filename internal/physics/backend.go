package physics

import (
	"context"
	"sync"
	"time"

	"voxelforge/pkg/blockmodel"
)

// Backend abstracts the physics engine the terrain attaches collision
// to. Colliders are keyed by grid cell so the engine can detach the
// exact volume it attached, and WaitSteps lets callers delay until the
// backend has actually registered recent attachments.
type Backend interface {
	// AddCollider registers an axis-aligned collision volume for a cell.
	AddCollider(cell [3]int, box blockmodel.Box) error
	// RemoveCollider detaches the collider of a cell, if present.
	RemoveCollider(cell [3]int)
	// WaitSteps blocks until the backend completes n further physics
	// steps, or the context is cancelled.
	WaitSteps(ctx context.Context, n int) error
}

// SimBackend is an in-process Backend that steps on demand (or on a
// timer via Run). It exists for the headless demo and for tests; a real
// integration wraps the host engine instead.
type SimBackend struct {
	mu        sync.Mutex
	colliders map[[3]int]blockmodel.Box
	steps     uint64
	stepC     chan struct{}
}

// NewSimBackend creates a backend with no colliders.
func NewSimBackend() *SimBackend {
	return &SimBackend{
		colliders: make(map[[3]int]blockmodel.Box),
		stepC:     make(chan struct{}),
	}
}

// AddCollider implements Backend.
func (b *SimBackend) AddCollider(cell [3]int, box blockmodel.Box) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.colliders[cell] = box
	return nil
}

// RemoveCollider implements Backend.
func (b *SimBackend) RemoveCollider(cell [3]int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.colliders, cell)
}

// Step completes one physics step, releasing WaitSteps callers.
func (b *SimBackend) Step() {
	b.mu.Lock()
	b.steps++
	close(b.stepC)
	b.stepC = make(chan struct{})
	b.mu.Unlock()
}

// WaitSteps implements Backend.
func (b *SimBackend) WaitSteps(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		b.mu.Lock()
		c := b.stepC
		b.mu.Unlock()
		select {
		case <-c:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Run steps the backend on a fixed interval until ctx is cancelled.
func (b *SimBackend) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Step()
		}
	}
}

// ColliderCount returns the number of attached colliders.
func (b *SimBackend) ColliderCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.colliders)
}

// HasCollider reports whether a cell currently has a collider.
func (b *SimBackend) HasCollider(cell [3]int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.colliders[cell]
	return ok
}

// Steps returns the number of completed physics steps.
func (b *SimBackend) Steps() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.steps
}
