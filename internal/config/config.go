package config

import "sync"

// Settings holds all runtime-mutable engine configuration. A single
// instance is constructed at startup and passed explicitly to every
// component that needs it; components read through the getters on each
// use so toggles take effect without restarting.
type Settings struct {
	mu sync.RWMutex

	generationDistance int // Chebyshev radius, in chunks
	mergeBlockMeshes   bool
	faceCulling        bool

	heightMultiplier int
	minHeight        int
	maxHeight        int
	bedrockDepth     int
	surfaceSkin      int // depth kept solid below the surface, cave-proof
	caveThreshold    float64
	cavesEnabled     bool

	treeChance float64
	bushChance float64

	heightFrequency     float64
	caveFrequency       float64
	vegetationFrequency float64
}

// Default returns a Settings with the engine defaults.
func Default() *Settings {
	return &Settings{
		generationDistance:  3,
		mergeBlockMeshes:    true,
		faceCulling:         true,
		heightMultiplier:    16,
		minHeight:           0,
		maxHeight:           64,
		bedrockDepth:        2,
		surfaceSkin:         3,
		caveThreshold:       0.3,
		cavesEnabled:        true,
		treeChance:          0.05,
		bushChance:          0.10,
		heightFrequency:     1.0 / 48.0,
		caveFrequency:       1.0 / 12.0,
		vegetationFrequency: 1.0 / 24.0,
	}
}

// GetGenerationDistance returns the chunk generation radius.
func (s *Settings) GetGenerationDistance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generationDistance
}

// SetGenerationDistance sets the chunk generation radius.
func (s *Settings) SetGenerationDistance(distance int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clamp to reasonable values
	if distance < 1 {
		distance = 1
	}
	if distance > 32 {
		distance = 32
	}
	s.generationDistance = distance
}

// GetMergeBlockMeshes returns whether chunks use one merged mesh
// instead of per-block geometry.
func (s *Settings) GetMergeBlockMeshes() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mergeBlockMeshes
}

// SetMergeBlockMeshes sets the merged-mesh mode.
func (s *Settings) SetMergeBlockMeshes(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeBlockMeshes = enabled
}

// GetFaceCulling returns whether hidden faces are skipped when meshing.
func (s *Settings) GetFaceCulling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faceCulling
}

// SetFaceCulling sets face culling for merged meshes.
func (s *Settings) SetFaceCulling(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faceCulling = enabled
}

// GetHeightMultiplier returns the surface height amplitude in blocks.
func (s *Settings) GetHeightMultiplier() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heightMultiplier
}

// SetHeightMultiplier sets the surface height amplitude in blocks.
func (s *Settings) SetHeightMultiplier(m int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m < 0 {
		m = 0
	}
	s.heightMultiplier = m
}

// GetMinHeight returns the lowest surface height.
func (s *Settings) GetMinHeight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minHeight
}

// SetMinHeight sets the lowest surface height.
func (s *Settings) SetMinHeight(h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minHeight = h
}

// GetMaxHeight returns the world height ceiling.
func (s *Settings) GetMaxHeight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxHeight
}

// SetMaxHeight sets the world height ceiling.
func (s *Settings) SetMaxHeight(h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h < 1 {
		h = 1
	}
	s.maxHeight = h
}

// GetBedrockDepth returns the Y below which everything is bedrock.
func (s *Settings) GetBedrockDepth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bedrockDepth
}

// SetBedrockDepth sets the bedrock layer depth.
func (s *Settings) SetBedrockDepth(d int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 1 {
		d = 1
	}
	s.bedrockDepth = d
}

// GetSurfaceSkin returns how many blocks below the surface stay solid
// regardless of cave noise.
func (s *Settings) GetSurfaceSkin() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.surfaceSkin
}

// GetCaveThreshold returns the normalized cave-noise cutoff. Lower
// values carve more caves.
func (s *Settings) GetCaveThreshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caveThreshold
}

// SetCaveThreshold sets the cave-noise cutoff.
func (s *Settings) SetCaveThreshold(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	s.caveThreshold = t
}

// GetCavesEnabled returns whether cave carving runs at all.
func (s *Settings) GetCavesEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cavesEnabled
}

// SetCavesEnabled toggles cave carving.
func (s *Settings) SetCavesEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cavesEnabled = enabled
}

// GetTreeChance returns the base tree placement probability.
func (s *Settings) GetTreeChance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treeChance
}

// SetTreeChance sets the base tree placement probability.
func (s *Settings) SetTreeChance(c float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.treeChance = c
}

// GetBushChance returns the base bush placement probability.
func (s *Settings) GetBushChance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bushChance
}

// SetBushChance sets the base bush placement probability.
func (s *Settings) SetBushChance(c float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bushChance = c
}

// GetHeightFrequency returns the height-noise frequency.
func (s *Settings) GetHeightFrequency() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heightFrequency
}

// GetCaveFrequency returns the cave-noise frequency.
func (s *Settings) GetCaveFrequency() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caveFrequency
}

// GetVegetationFrequency returns the vegetation-noise frequency.
func (s *Settings) GetVegetationFrequency() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vegetationFrequency
}
