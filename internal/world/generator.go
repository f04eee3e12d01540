package world

import (
	"fmt"
	"log/slog"
	"time"

	"voxelforge/internal/config"
	"voxelforge/internal/physics"
	"voxelforge/internal/profiling"
	"voxelforge/pkg/blockmodel"
)

// Generator fills one chunk's cells from the terrain rules. It is safe
// for concurrent use by the scheduler's workers; all shared state lives
// behind the block index's own lock.
type Generator struct {
	rules    *Rules
	settings *config.Settings
	index    *BlockIndex
	provider blockmodel.Provider
	physics  physics.Backend
	metrics  *Metrics
	log      *slog.Logger
}

// NewGenerator wires a generator. provider and backend must be non-nil.
func NewGenerator(rules *Rules, settings *config.Settings, index *BlockIndex, provider blockmodel.Provider, backend physics.Backend, metrics *Metrics, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		rules:    rules,
		settings: settings,
		index:    index,
		provider: provider,
		physics:  backend,
		metrics:  metrics,
		log:      log,
	}
}

// Generate produces every block of the chunk and returns the chunk's
// block map. Columns are filled surface-first downward so the skin
// layers sit against the actual surface height. Cells already occupied
// in the index, for example by a player-placed block, win the conflict;
// the map records the type that actually occupies the cell.
func (g *Generator) Generate(coord ChunkCoord) (*ChunkBlockMap, error) {
	defer profiling.Track("world.Generate")()
	start := time.Now()

	merged := g.settings.GetMergeBlockMeshes()
	blocks := NewChunkBlockMap(coord)
	ox, oz := coord.Origin()

	for lx := 0; lx < ChunkSize; lx++ {
		for lz := 0; lz < ChunkSize; lz++ {
			x := ox + lx
			z := oz + lz
			surface := g.rules.SurfaceHeight(x, z)
			for y := surface; y >= 0; y-- {
				if g.rules.IsCave(x, y, z, surface) {
					continue
				}
				t := g.rules.TypeForHeight(y, surface)
				key := GridKey{X: x, Y: y, Z: z}
				if err := g.placeCell(key, t, merged, blocks); err != nil {
					return nil, fmt.Errorf("chunk (%d,%d): %w", coord.X, coord.Z, err)
				}
			}
		}
	}

	if g.metrics != nil {
		g.metrics.GenerateDuration.Observe(time.Since(start).Seconds())
	}
	return blocks, nil
}

// placeCell inserts one generated cell. Insert conflicts are not
// errors: generation never overwrites a live cell.
func (g *Generator) placeCell(key GridKey, t BlockType, merged bool, blocks *ChunkBlockMap) error {
	cell := &Cell{Type: t, Position: key.World()}
	if !merged {
		rep, err := g.cloneRepresentation(t, key)
		if err != nil {
			return err
		}
		cell.Rep = rep
	}

	if !g.index.TryInsert(key, cell) {
		if g.metrics != nil {
			g.metrics.InsertConflicts.Inc()
		}
		if existing, ok := g.index.Get(key); ok {
			blocks.Set(key, existing.Type)
		}
		return nil
	}

	if err := g.physics.AddCollider(key.Array(), blockmodel.UnitBox().Translate(key.World())); err != nil {
		return fmt.Errorf("attach collider at %v: %w", key, err)
	}
	blocks.Set(key, t)
	return nil
}

// cloneRepresentation clones the per-block template for t, falling back
// to the grass template when t has none registered. Failing both soft-
// fails the chunk so the scheduler can retry it.
func (g *Generator) cloneRepresentation(t BlockType, key GridKey) (*blockmodel.Representation, error) {
	rep, err := g.provider.Clone(uint16(t))
	if err != nil {
		g.log.Warn("no template for block, using grass fallback",
			"block", t.String(), "key", key)
		rep, err = g.provider.Clone(uint16(BlockTypeGrass))
		if err != nil {
			return nil, fmt.Errorf("clone template for %s: %w", t, err)
		}
	}
	rep.Position = key.World()
	rep.Box = rep.Box.Translate(key.World())
	return rep, nil
}
