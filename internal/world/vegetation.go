package world

import (
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"voxelforge/internal/config"
	"voxelforge/internal/noise"
	"voxelforge/pkg/blockmodel"
)

// Vegetation places decorative props (trees, bushes) on generated
// terrain. Props are visual only: they never enter the block index and
// carry no colliders. Placement is deterministic per column for a given
// seed, and each column is decided at most once.
type Vegetation struct {
	settings *config.Settings
	noise    noise.Sampler
	provider blockmodel.Provider
	seed     int64
	log      *slog.Logger

	mu      sync.Mutex
	decided map[[2]int]struct{}
}

// NewVegetation wires a placer.
func NewVegetation(settings *config.Settings, sampler noise.Sampler, provider blockmodel.Provider, seed int64, log *slog.Logger) *Vegetation {
	if log == nil {
		log = slog.Default()
	}
	return &Vegetation{
		settings: settings,
		noise:    sampler,
		provider: provider,
		seed:     seed,
		log:      log,
	}
}

// PlaceForChunk decides vegetation for every column of the chunk and
// returns the placed props. blocks supplies the surface: a prop goes on
// the topmost grass cell of its column. Columns already decided, in
// this call or an earlier one, are skipped.
func (v *Vegetation) PlaceForChunk(coord ChunkCoord, blocks *ChunkBlockMap) []*blockmodel.Representation {
	v.mu.Lock()
	if v.decided == nil {
		v.decided = make(map[[2]int]struct{})
	}
	v.mu.Unlock()

	ox, oz := coord.Origin()
	tops := grassTops(blocks)
	var props []*blockmodel.Representation
	for lx := 0; lx < ChunkSize; lx++ {
		for lz := 0; lz < ChunkSize; lz++ {
			x := ox + lx
			z := oz + lz
			if !v.claimColumn(x, z) {
				continue
			}
			if rep := v.decideColumn(x, z, tops); rep != nil {
				props = append(props, rep)
			}
		}
	}
	return props
}

// claimColumn marks the column decided. False when already decided.
func (v *Vegetation) claimColumn(x, z int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	key := [2]int{x, z}
	if _, ok := v.decided[key]; ok {
		return false
	}
	v.decided[key] = struct{}{}
	return true
}

// decideColumn rolls the column against the density bands and builds
// the prop, if any. The vegetation noise scales the configured chances:
// dense regions roll up to 1.5x the base chance, sparse regions down
// to 0.5x.
func (v *Vegetation) decideColumn(x, z int, tops map[[2]int]int) *blockmodel.Representation {
	top, ok := tops[[2]int{x, z}]
	if !ok {
		return nil
	}

	density := 0.5 + noise.Normalize(v.noise.Vegetation(float64(x), float64(z)))
	roll := columnRoll(v.seed, x, z)

	treeBand := v.settings.GetTreeChance() * density
	bushBand := v.settings.GetBushChance() * density

	var block uint16
	switch {
	case roll < treeBand:
		block = PropModelTree
	case roll < treeBand+bushBand:
		block = PropModelBush
	default:
		return nil
	}

	rep, err := v.provider.Clone(block)
	if err != nil {
		v.log.Warn("no prop template, skipping placement",
			"prop", block, "x", x, "z", z)
		return nil
	}
	// Rest the model's box bottom on the top face of the surface cell,
	// centered on the column.
	surfaceTop := float32(top + 1)
	rep.Position = worldVec(float32(x)+0.5, surfaceTop-rep.Box.Min.Y(), float32(z)+0.5)
	return rep
}

// grassTops collects the highest grass cell of each column in one pass
// over the chunk's block map.
func grassTops(blocks *ChunkBlockMap) map[[2]int]int {
	tops := make(map[[2]int]int, ChunkSize*ChunkSize)
	blocks.ForEach(func(key GridKey, t BlockType) {
		if t != BlockTypeGrass {
			return
		}
		col := [2]int{key.X, key.Z}
		if best, ok := tops[col]; !ok || key.Y > best {
			tops[col] = key.Y
		}
	})
	return tops
}

// worldVec is a convenience for prop placement.
func worldVec(x, y, z float32) mgl32.Vec3 {
	return mgl32.Vec3{x, y, z}
}

// columnRoll derives a stable value in [0,1) from the seed and column.
// SplitMix64 finalizer over the packed coordinates.
func columnRoll(seed int64, x, z int) float64 {
	h := uint64(seed) ^ uint64(uint32(x))<<32 ^ uint64(uint32(z))
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return float64(h>>11) / float64(1<<53)
}
