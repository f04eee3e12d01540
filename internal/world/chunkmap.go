package world

import "sync"

// ChunkBlockMap records every block type a chunk's generation pass
// produced, keyed by grid position. It is kept in both per-block and
// merged-mesh modes so geometry can be re-derived when meshing settings
// change at runtime, and so generation conflicts can record the block
// that actually occupies a contested cell. The map carries its own lock
// because geometry rebuilds read it while player mutations write it.
type ChunkBlockMap struct {
	Coord ChunkCoord

	mu     sync.RWMutex
	blocks map[GridKey]BlockType
}

// NewChunkBlockMap creates an empty map for the chunk.
func NewChunkBlockMap(coord ChunkCoord) *ChunkBlockMap {
	return &ChunkBlockMap{
		Coord:  coord,
		blocks: make(map[GridKey]BlockType, ChunkSize*ChunkSize*8),
	}
}

// Set records the block type at key. Air entries are not stored.
func (m *ChunkBlockMap) Set(key GridKey, t BlockType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t == BlockTypeAir {
		delete(m.blocks, key)
		return
	}
	m.blocks[key] = t
}

// Get returns the recorded type at key, air if absent.
func (m *ChunkBlockMap) Get(key GridKey) BlockType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blocks[key]
}

// Delete drops the entry at key.
func (m *ChunkBlockMap) Delete(key GridKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blocks, key)
}

// Len returns the number of non-air entries.
func (m *ChunkBlockMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}

// ForEach visits entries in unspecified order. The callback must not
// call back into the map.
func (m *ChunkBlockMap) ForEach(fn func(GridKey, BlockType)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for key, t := range m.blocks {
		fn(key, t)
	}
}

// Keys returns all occupied grid keys in unspecified order.
func (m *ChunkBlockMap) Keys() []GridKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]GridKey, 0, len(m.blocks))
	for key := range m.blocks {
		keys = append(keys, key)
	}
	return keys
}
