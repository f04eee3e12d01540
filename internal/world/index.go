package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"voxelforge/pkg/blockmodel"
)

// Cell is one placed block. The index entry exclusively owns the cell
// and its representation; when the cell is removed the caller releases
// the representation's resources.
type Cell struct {
	Type BlockType
	// Rep is the renderable/collidable instance for the cell. Nil in
	// merged-mesh mode, where the chunk mesh represents the cell.
	Rep *blockmodel.Representation
	// Position is the world-space origin corner of the cell.
	Position mgl32.Vec3
}

// Mineable reports whether the cell may be removed by the player.
func (c *Cell) Mineable() bool {
	return c.Type.Mineable()
}

// BlockIndex is the spatial block database: grid key to cell. The
// central invariant of the engine is at most one live cell per key;
// every check-and-insert happens as a single step under the index lock
// so concurrent generation and player mutation cannot double-fill a
// cell.
type BlockIndex struct {
	mu    sync.RWMutex
	cells map[GridKey]*Cell
}

// NewBlockIndex creates an empty index.
func NewBlockIndex() *BlockIndex {
	return &BlockIndex{cells: make(map[GridKey]*Cell)}
}

// TryInsert inserts the cell iff the key is unoccupied. Check and
// insert are one atomic step. Returns false, with no change, when a
// live cell already occupies the key.
func (bi *BlockIndex) TryInsert(key GridKey, cell *Cell) bool {
	if cell == nil {
		return false
	}
	bi.mu.Lock()
	defer bi.mu.Unlock()
	if _, occupied := bi.cells[key]; occupied {
		return false
	}
	bi.cells[key] = cell
	return true
}

// Remove removes and returns the cell at key, if present. The caller
// is responsible for releasing the cell's geometry resources.
func (bi *BlockIndex) Remove(key GridKey) (*Cell, bool) {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	cell, ok := bi.cells[key]
	if !ok {
		return nil, false
	}
	delete(bi.cells, key)
	return cell, true
}

// RemoveIf removes the cell at key only when pred accepts it. Check and
// remove happen under one lock acquisition, so the cell cannot change
// between the policy check and the removal.
func (bi *BlockIndex) RemoveIf(key GridKey, pred func(*Cell) bool) (*Cell, bool) {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	cell, ok := bi.cells[key]
	if !ok || !pred(cell) {
		return nil, false
	}
	delete(bi.cells, key)
	return cell, true
}

// Get returns the cell at key for read-only use.
func (bi *BlockIndex) Get(key GridKey) (*Cell, bool) {
	bi.mu.RLock()
	defer bi.mu.RUnlock()
	cell, ok := bi.cells[key]
	return cell, ok
}

// Len returns the number of live cells.
func (bi *BlockIndex) Len() int {
	bi.mu.RLock()
	defer bi.mu.RUnlock()
	return len(bi.cells)
}

// Solid reports whether a cell occupies the grid position. Implements
// physics.BlockQuerier and serves the mesher's neighbor queries.
func (bi *BlockIndex) Solid(x, y, z int) bool {
	bi.mu.RLock()
	_, ok := bi.cells[GridKey{X: x, Y: y, Z: z}]
	bi.mu.RUnlock()
	return ok
}

// Reconcile verifies that the cell stored under key still belongs
// there: a nil entry, or a cell whose actual world position no longer
// maps back to the key, is evicted. Returns the evicted cell, if any.
func (bi *BlockIndex) Reconcile(key GridKey) (*Cell, bool) {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	cell, ok := bi.cells[key]
	if !ok {
		return nil, false
	}
	if cell != nil && KeyFromWorld(cell.Position) == key {
		return nil, false
	}
	delete(bi.cells, key)
	return cell, true
}

// ReconcileArea runs Reconcile over every cell within a Chebyshev
// radius (in chunks) of the center chunk. Full-world scans are
// deliberately avoided; the scheduler calls this rate-limited and
// scoped to the active area. Returns the number of evicted entries.
func (bi *BlockIndex) ReconcileArea(center ChunkCoord, radiusChunks int) int {
	// Collect candidate keys under the read lock, then reconcile each
	// individually so eviction decisions stay atomic per key.
	minX := (center.X - radiusChunks) * ChunkSize
	maxX := (center.X+radiusChunks+1)*ChunkSize - 1
	minZ := (center.Z - radiusChunks) * ChunkSize
	maxZ := (center.Z+radiusChunks+1)*ChunkSize - 1

	bi.mu.RLock()
	candidates := make([]GridKey, 0, 64)
	for key := range bi.cells {
		if key.X >= minX && key.X <= maxX && key.Z >= minZ && key.Z <= maxZ {
			candidates = append(candidates, key)
		}
	}
	bi.mu.RUnlock()

	evicted := 0
	for _, key := range candidates {
		if _, ok := bi.Reconcile(key); ok {
			evicted++
		}
	}
	return evicted
}

// MutateInChunk visits every cell of a chunk under the write lock, so
// the callback may update cell fields in place. The callback must not
// call back into the index.
func (bi *BlockIndex) MutateInChunk(coord ChunkCoord, fn func(GridKey, *Cell)) {
	bi.mu.Lock()
	defer bi.mu.Unlock()
	for key, cell := range bi.cells {
		if key.Chunk() == coord {
			fn(key, cell)
		}
	}
}

// ForEachInChunk visits every cell of a chunk. The callback must not
// mutate the index.
func (bi *BlockIndex) ForEachInChunk(coord ChunkCoord, fn func(GridKey, *Cell)) {
	bi.mu.RLock()
	defer bi.mu.RUnlock()
	for key, cell := range bi.cells {
		if key.Chunk() == coord {
			fn(key, cell)
		}
	}
}
