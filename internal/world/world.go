package world

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"voxelforge/internal/config"
	"voxelforge/internal/noise"
	"voxelforge/internal/physics"
	"voxelforge/internal/profiling"
	"voxelforge/pkg/blockmodel"
)

// Config carries the facade's dependencies. Provider, Physics, Noise
// and Mesher are required.
type Config struct {
	Log      *slog.Logger
	Settings *config.Settings
	Provider blockmodel.Provider
	Physics  physics.Backend
	Noise    noise.Sampler
	Seed     int64
	Mesher   MeshBuilder
	Metrics  *Metrics
}

// settleSteps is how many physics steps must elapse after the last
// collider attach before terrain counts as ready.
const settleSteps = 2

// World is the engine facade: it owns the block index, the chunk
// scheduler, vegetation and geometry, and exposes the player-facing
// operations. All methods are safe for concurrent use.
type World struct {
	session  uuid.UUID
	log      *slog.Logger
	settings *config.Settings
	provider blockmodel.Provider
	physics  physics.Backend
	mesher   MeshBuilder
	metrics  *Metrics

	index      *BlockIndex
	rules      *Rules
	scheduler  *Scheduler
	vegetation *Vegetation

	mu       sync.Mutex
	blockMap map[ChunkCoord]*ChunkBlockMap
	geometry map[ChunkCoord]*ChunkGeometry
	props    map[ChunkCoord][]*blockmodel.Representation
	dirty    map[ChunkCoord]struct{}

	playerMu  sync.RWMutex
	playerPos mgl32.Vec3

	ready     chan struct{}
	readyOnce sync.Once
	settling  bool

	closeOnce sync.Once
}

// New builds a world from cfg. Errors on missing required dependencies.
func New(cfg Config) (*World, error) {
	if cfg.Provider == nil {
		return nil, errors.New("world: nil block model provider")
	}
	if cfg.Physics == nil {
		return nil, errors.New("world: nil physics backend")
	}
	if cfg.Noise == nil {
		return nil, errors.New("world: nil noise sampler")
	}
	if cfg.Mesher == nil {
		return nil, errors.New("world: nil mesh builder")
	}
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	w := &World{
		session:  uuid.New(),
		log:      cfg.Log,
		settings: cfg.Settings,
		provider: cfg.Provider,
		physics:  cfg.Physics,
		mesher:   cfg.Mesher,
		metrics:  cfg.Metrics,
		index:    NewBlockIndex(),
		blockMap: make(map[ChunkCoord]*ChunkBlockMap),
		geometry: make(map[ChunkCoord]*ChunkGeometry),
		props:    make(map[ChunkCoord][]*blockmodel.Representation),
		dirty:    make(map[ChunkCoord]struct{}),
		ready:    make(chan struct{}),
	}
	w.rules = NewRules(cfg.Settings, cfg.Noise)
	gen := NewGenerator(w.rules, cfg.Settings, w.index, cfg.Provider, cfg.Physics, cfg.Metrics, cfg.Log)
	w.vegetation = NewVegetation(cfg.Settings, cfg.Noise, cfg.Provider, cfg.Seed, cfg.Log)
	w.scheduler = NewScheduler(gen, cfg.Settings, w.index, cfg.Metrics, cfg.Log, w.chunkGenerated)

	w.log.Info("world created", "session", w.session.String(), "seed", cfg.Seed)
	return w, nil
}

// Session returns the identifier of this world instance.
func (w *World) Session() string {
	return w.session.String()
}

// Tick advances streaming: schedules generation around the player,
// rebuilds dirty geometry and arms the terrain-ready signal once the
// initial radius is fully generated.
func (w *World) Tick(playerPos mgl32.Vec3) {
	defer profiling.Track("world.Tick")()

	w.playerMu.Lock()
	w.playerPos = playerPos
	w.playerMu.Unlock()

	w.scheduler.Tick(playerPos)
	w.rebuildDirty()
	w.checkReady(playerPos)
}

// TerrainReady returns a channel closed once every chunk within the
// generation distance of the player is generated and the physics
// backend has stepped past the last collider attach.
func (w *World) TerrainReady() <-chan struct{} {
	return w.ready
}

func (w *World) checkReady(playerPos mgl32.Vec3) {
	select {
	case <-w.ready:
		return
	default:
	}
	w.mu.Lock()
	if w.settling {
		w.mu.Unlock()
		return
	}
	center := ChunkFromWorld(playerPos)
	radius := w.settings.GetGenerationDistance()
	if !w.scheduler.RadiusGenerated(center, radius) {
		w.mu.Unlock()
		return
	}
	w.settling = true
	w.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := w.physics.WaitSteps(ctx, settleSteps); err != nil {
			w.log.Warn("physics settle wait aborted", "err", err)
			w.mu.Lock()
			w.settling = false
			w.mu.Unlock()
			return
		}
		w.readyOnce.Do(func() { close(w.ready) })
		w.log.Info("terrain ready", "session", w.session.String())
	}()
}

// chunkGenerated runs on a scheduler worker after a chunk's cells are
// in the index: it stores the block map, places vegetation and builds
// the chunk's geometry.
func (w *World) chunkGenerated(coord ChunkCoord, blocks *ChunkBlockMap) {
	props := w.vegetation.PlaceForChunk(coord, blocks)
	geom := w.buildGeometry(blocks)

	w.mu.Lock()
	w.blockMap[coord] = blocks
	w.geometry[coord] = geom
	if len(props) > 0 {
		w.props[coord] = props
	}
	// Neighbor faces along the new chunk's border may now be hidden.
	for _, n := range []ChunkCoord{
		{coord.X - 1, coord.Z}, {coord.X + 1, coord.Z},
		{coord.X, coord.Z - 1}, {coord.X, coord.Z + 1},
	} {
		if _, ok := w.blockMap[n]; ok {
			w.dirty[n] = struct{}{}
		}
	}
	w.mu.Unlock()
}

func (w *World) buildGeometry(blocks *ChunkBlockMap) *ChunkGeometry {
	start := time.Now()
	geom := w.mesher.Build(blocks, w.index, w.settings.GetFaceCulling())
	if w.metrics != nil {
		w.metrics.MeshDuration.Observe(time.Since(start).Seconds())
	}
	return geom
}

// rebuildDirty remeshes every chunk flagged since the last tick.
func (w *World) rebuildDirty() {
	w.mu.Lock()
	if len(w.dirty) == 0 {
		w.mu.Unlock()
		return
	}
	pending := make([]*ChunkBlockMap, 0, len(w.dirty))
	for coord := range w.dirty {
		if blocks, ok := w.blockMap[coord]; ok {
			pending = append(pending, blocks)
		}
		delete(w.dirty, coord)
	}
	w.mu.Unlock()

	for _, blocks := range pending {
		geom := w.buildGeometry(blocks)
		w.mu.Lock()
		w.geometry[blocks.Coord] = geom
		w.mu.Unlock()
	}
}

// markDirty flags the chunk owning key, and any neighbor chunk the key
// borders, for remeshing.
func (w *World) markDirty(key GridKey) {
	coords := []ChunkCoord{key.Chunk()}
	if mod(key.X, ChunkSize) == 0 {
		coords = append(coords, ChunkCoord{X: key.Chunk().X - 1, Z: key.Chunk().Z})
	}
	if mod(key.X, ChunkSize) == ChunkSize-1 {
		coords = append(coords, ChunkCoord{X: key.Chunk().X + 1, Z: key.Chunk().Z})
	}
	if mod(key.Z, ChunkSize) == 0 {
		coords = append(coords, ChunkCoord{X: key.Chunk().X, Z: key.Chunk().Z - 1})
	}
	if mod(key.Z, ChunkSize) == ChunkSize-1 {
		coords = append(coords, ChunkCoord{X: key.Chunk().X, Z: key.Chunk().Z + 1})
	}
	w.mu.Lock()
	for _, c := range coords {
		if _, ok := w.blockMap[c]; ok {
			w.dirty[c] = struct{}{}
		}
	}
	w.mu.Unlock()
}

// PlaceBlock places a block of type t in the cell containing pos.
// Placement fails when the cell is occupied or when the new block would
// intersect the player's bounding box.
func (w *World) PlaceBlock(pos mgl32.Vec3, t BlockType) bool {
	defer profiling.Track("world.PlaceBlock")()
	if t == BlockTypeAir {
		return false
	}
	key := KeyFromWorld(pos)

	w.playerMu.RLock()
	playerPos := w.playerPos
	w.playerMu.RUnlock()
	if physics.IntersectsBlock(playerPos, key.X, key.Y, key.Z) {
		return false
	}

	cell := &Cell{Type: t, Position: key.World()}
	if !w.settings.GetMergeBlockMeshes() {
		rep, err := w.provider.Clone(uint16(t))
		if err != nil {
			w.log.Warn("place rejected, no block template", "block", t.String(), "err", err)
			return false
		}
		rep.Position = key.World()
		rep.Box = rep.Box.Translate(key.World())
		cell.Rep = rep
	}
	if !w.index.TryInsert(key, cell) {
		return false
	}
	if err := w.physics.AddCollider(key.Array(), blockmodel.UnitBox().Translate(key.World())); err != nil {
		w.log.Error("collider attach failed after place", "key", key, "err", err)
	}

	w.mu.Lock()
	if blocks, ok := w.blockMap[key.Chunk()]; ok {
		blocks.Set(key, t)
	}
	w.mu.Unlock()
	w.markDirty(key)
	if w.metrics != nil {
		w.metrics.BlocksPlaced.Inc()
	}
	return true
}

// RemoveBlock removes the block in the cell containing pos. Bedrock and
// empty cells refuse removal. Returns the removed type on success.
func (w *World) RemoveBlock(pos mgl32.Vec3) (BlockType, bool) {
	defer profiling.Track("world.RemoveBlock")()
	key := KeyFromWorld(pos)
	cell, ok := w.index.RemoveIf(key, (*Cell).Mineable)
	if !ok {
		return BlockTypeAir, false
	}
	w.physics.RemoveCollider(key.Array())

	w.mu.Lock()
	if blocks, ok := w.blockMap[key.Chunk()]; ok {
		blocks.Delete(key)
	}
	w.mu.Unlock()
	w.markDirty(key)
	if w.metrics != nil {
		w.metrics.BlocksRemoved.Inc()
	}
	return cell.Type, true
}

// BlockAt returns the block type occupying the cell containing pos.
func (w *World) BlockAt(pos mgl32.Vec3) BlockType {
	cell, ok := w.index.Get(KeyFromWorld(pos))
	if !ok {
		return BlockTypeAir
	}
	return cell.Type
}

// SurfaceHeightAt returns the terrain surface height the rules would
// generate for the column, independent of whether the chunk exists yet.
func (w *World) SurfaceHeightAt(x, z int) int {
	return w.rules.SurfaceHeight(x, z)
}

// TargetBlock casts a ray from origin along direction against the
// block index, within the player's reach.
func (w *World) TargetBlock(origin, direction mgl32.Vec3) physics.RaycastResult {
	return physics.Raycast(origin, direction, physics.MinReachDistance, physics.MaxReachDistance, w.index)
}

// Geometry returns the current geometry of a chunk, nil when the chunk
// has not been meshed.
func (w *World) Geometry(coord ChunkCoord) *ChunkGeometry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.geometry[coord]
}

// Props returns the vegetation props of a chunk.
func (w *World) Props(coord ChunkCoord) []*blockmodel.Representation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.props[coord]
}

// ChunkState returns the lifecycle state of a chunk.
func (w *World) ChunkState(coord ChunkCoord) ChunkState {
	return w.scheduler.State(coord)
}

// Blocks returns the number of live cells.
func (w *World) Blocks() int {
	return w.index.Len()
}

// SetGenerationDistance changes the streaming radius. Newly covered
// chunks generate on the next tick.
func (w *World) SetGenerationDistance(chunks int) {
	w.settings.SetGenerationDistance(chunks)
}

// SetFaceCulling toggles hidden-face removal and remeshes every loaded
// chunk.
func (w *World) SetFaceCulling(enabled bool) {
	w.settings.SetFaceCulling(enabled)
	w.rebuildAllGeometry()
}

// SetMergeBlockMeshes toggles merged-mesh mode, re-derives per-cell
// representations for every loaded chunk and remeshes them.
func (w *World) SetMergeBlockMeshes(enabled bool) {
	w.settings.SetMergeBlockMeshes(enabled)
	w.syncRepresentations(enabled)
	w.rebuildAllGeometry()
}

// syncRepresentations brings loaded cells in line with the meshing
// mode: merged mode releases per-cell representations, per-block mode
// attaches one to every cell lacking it.
func (w *World) syncRepresentations(merged bool) {
	w.mu.Lock()
	coords := make([]ChunkCoord, 0, len(w.blockMap))
	for coord := range w.blockMap {
		coords = append(coords, coord)
	}
	w.mu.Unlock()

	for _, coord := range coords {
		w.index.MutateInChunk(coord, func(key GridKey, cell *Cell) {
			if merged {
				cell.Rep = nil
				return
			}
			if cell.Rep != nil {
				return
			}
			rep, err := w.provider.Clone(uint16(cell.Type))
			if err != nil {
				rep, err = w.provider.Clone(uint16(BlockTypeGrass))
			}
			if err != nil {
				w.log.Warn("no block template after mesh mode switch",
					"block", cell.Type.String(), "key", key, "err", err)
				return
			}
			rep.Position = key.World()
			rep.Box = rep.Box.Translate(key.World())
			cell.Rep = rep
		})
	}
}

func (w *World) rebuildAllGeometry() {
	w.mu.Lock()
	for coord := range w.blockMap {
		w.dirty[coord] = struct{}{}
	}
	w.mu.Unlock()
	w.rebuildDirty()
}

// Close stops background generation and waits for in-flight chunks.
func (w *World) Close() {
	w.closeOnce.Do(func() {
		w.scheduler.Close()
		w.log.Info("world closed", "session", w.session.String(), "blocks", w.index.Len())
	})
}
