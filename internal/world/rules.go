package world

import (
	"math"

	"voxelforge/internal/config"
	"voxelforge/internal/noise"
)

// Rules maps noise samples to terrain decisions: surface height per
// column, block type per depth, and cave carving. Pure given the
// sampler; all tunables are read from Settings on each call so runtime
// changes apply to chunks generated afterwards.
type Rules struct {
	settings *config.Settings
	noise    noise.Sampler
}

// NewRules creates the rule set for a sampler.
func NewRules(settings *config.Settings, sampler noise.Sampler) *Rules {
	return &Rules{settings: settings, noise: sampler}
}

// SurfaceHeight computes the surface block Y for a world column.
func (r *Rules) SurfaceHeight(x, z int) int {
	min := r.settings.GetMinHeight()
	max := r.settings.GetMaxHeight()
	mult := r.settings.GetHeightMultiplier()

	n := noise.Normalize(r.noise.Height(float64(x), float64(z)))
	h := int(math.Round(n*float64(mult))) + min
	if h < min {
		h = min
	}
	if h > max {
		h = max
	}
	return h
}

// TypeForHeight decides the block type for depth y in a column with the
// given surface height.
func (r *Rules) TypeForHeight(y, surface int) BlockType {
	switch {
	case y < r.settings.GetBedrockDepth():
		return BlockTypeBedrock
	case y == surface:
		return BlockTypeGrass
	case y >= surface-r.settings.GetSurfaceSkin():
		return BlockTypeDirt
	default:
		return BlockTypeStone
	}
}

// IsCave reports whether the cell at (x, y, z) should be carved out.
// The surface skin and the bedrock layer are never carved, so the
// ground under the player stays solid and the world keeps its floor.
func (r *Rules) IsCave(x, y, z, surface int) bool {
	if !r.settings.GetCavesEnabled() {
		return false
	}
	if y >= surface-r.settings.GetSurfaceSkin() {
		return false
	}
	if y < r.settings.GetBedrockDepth() {
		return false
	}
	n := noise.Normalize(r.noise.Cave(float64(x), float64(y), float64(z)))
	return n < r.settings.GetCaveThreshold()
}

// IsMineable reports whether the rules allow removing the block type.
func (r *Rules) IsMineable(t BlockType) bool {
	return t.Mineable()
}
