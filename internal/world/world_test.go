package world

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelforge/internal/config"
	"voxelforge/internal/noise"
	"voxelforge/internal/physics"
)

// countingMesher is a minimal MeshBuilder for facade tests; geometry
// content is covered by the meshing package.
type countingMesher struct {
	builds atomic.Int64
}

func (m *countingMesher) Build(blocks *ChunkBlockMap, neighbors NeighborQuerier, faceCulling bool) *ChunkGeometry {
	m.builds.Add(1)
	geom := &ChunkGeometry{Coord: blocks.Coord, Mesh: &Mesh{}}
	blocks.ForEach(func(key GridKey, _ BlockType) {
		geom.Colliders = append(geom.Colliders, CellBox{Key: key})
	})
	return geom
}

func newTestWorld(t *testing.T, s *config.Settings) (*World, *physics.SimBackend, *countingMesher) {
	t.Helper()
	if s == nil {
		s = flatSettings()
		s.SetGenerationDistance(1)
	}
	backend := physics.NewSimBackend()
	mesher := &countingMesher{}
	w, err := New(Config{
		Settings: s,
		Provider: testProvider(),
		Physics:  backend,
		Noise:    noise.Flat{Value: 0},
		Seed:     42,
		Mesher:   mesher,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(w.Close)
	return w, backend, mesher
}

// settleWorld ticks and steps physics until the terrain-ready signal
// fires.
func settleWorld(t *testing.T, w *World, backend *physics.SimBackend, pos mgl32.Vec3) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		select {
		case <-w.TerrainReady():
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("terrain never became ready")
		}
		w.Tick(pos)
		backend.Step()
		time.Sleep(time.Millisecond)
	}
}

func TestWorldRequiresDependencies(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New with no dependencies should fail")
	}
	if _, err := New(Config{Provider: testProvider()}); err == nil {
		t.Fatal("New without physics should fail")
	}
}

func TestWorldTerrainReady(t *testing.T) {
	w, backend, _ := newTestWorld(t, nil)
	pos := mgl32.Vec3{8, 10, 8}

	select {
	case <-w.TerrainReady():
		t.Fatal("terrain ready before any tick")
	default:
	}

	settleWorld(t, w, backend, pos)

	// Radius 1 around the player: 9 chunks of flat terrain.
	const want = 9 * 16 * 16 * 6
	if w.Blocks() != want {
		t.Errorf("world holds %d blocks, want %d", w.Blocks(), want)
	}
	if w.ChunkState(ChunkCoord{0, 0}) != Generated {
		t.Error("player chunk not generated")
	}
	if w.Geometry(ChunkCoord{0, 0}) == nil {
		t.Error("player chunk has no geometry")
	}
}

func TestWorldPlaceAndRemove(t *testing.T) {
	w, backend, _ := newTestWorld(t, nil)
	player := mgl32.Vec3{8, 10, 8}
	settleWorld(t, w, backend, player)

	surface := mgl32.Vec3{3.5, 5.5, 3.5}
	removed, ok := w.RemoveBlock(surface)
	if !ok || removed != BlockTypeGrass {
		t.Fatalf("RemoveBlock = (%v, %v), want (BlockTypeGrass, true)", removed, ok)
	}
	if w.BlockAt(surface) != BlockTypeAir {
		t.Fatal("removed cell still occupied")
	}
	if backend.HasCollider([3]int{3, 5, 3}) {
		t.Error("removed cell still has a collider")
	}

	if !w.PlaceBlock(surface, BlockTypeGlass) {
		t.Fatal("placing into the emptied cell should succeed")
	}
	if w.BlockAt(surface) != BlockTypeGlass {
		t.Fatal("placed block not visible")
	}
	if w.PlaceBlock(surface, BlockTypeStone) {
		t.Fatal("placing into an occupied cell should fail")
	}
	if !backend.HasCollider([3]int{3, 5, 3}) {
		t.Error("placed cell has no collider")
	}
}

func TestWorldRemoveBedrockRefused(t *testing.T) {
	w, backend, _ := newTestWorld(t, nil)
	settleWorld(t, w, backend, mgl32.Vec3{8, 10, 8})

	if _, ok := w.RemoveBlock(mgl32.Vec3{3.5, 0.5, 3.5}); ok {
		t.Fatal("bedrock removal must be refused")
	}
	if w.BlockAt(mgl32.Vec3{3.5, 0.5, 3.5}) != BlockTypeBedrock {
		t.Fatal("bedrock cell changed")
	}
}

func TestWorldPlaceInsidePlayerRefused(t *testing.T) {
	w, backend, _ := newTestWorld(t, nil)
	player := mgl32.Vec3{8, 10, 8}
	settleWorld(t, w, backend, player)

	// The cell at the player's feet overlaps the player's bounding box.
	if w.PlaceBlock(mgl32.Vec3{8.0, 10.5, 8.0}, BlockTypeStone) {
		t.Fatal("placement intersecting the player must fail")
	}
	// Well clear of the player.
	if !w.PlaceBlock(mgl32.Vec3{2.5, 10.5, 2.5}, BlockTypeStone) {
		t.Fatal("placement clear of the player should succeed")
	}
}

func TestWorldTargetBlock(t *testing.T) {
	w, backend, _ := newTestWorld(t, nil)
	settleWorld(t, w, backend, mgl32.Vec3{8, 10, 8})

	res := w.TargetBlock(mgl32.Vec3{8.5, 8.0, 8.5}, mgl32.Vec3{0, -1, 0})
	if !res.Hit {
		t.Fatal("downward ray above flat terrain must hit")
	}
	if res.HitPosition != [3]int{8, 5, 8} {
		t.Errorf("hit %v, want [8 5 8]", res.HitPosition)
	}
	if res.AdjacentPosition != [3]int{8, 6, 8} {
		t.Errorf("adjacent %v, want [8 6 8]", res.AdjacentPosition)
	}

	up := w.TargetBlock(mgl32.Vec3{8.5, 8.0, 8.5}, mgl32.Vec3{0, 1, 0})
	if up.Hit {
		t.Error("upward ray into open sky must miss")
	}
}

func TestWorldSurfaceHeight(t *testing.T) {
	w, _, _ := newTestWorld(t, nil)
	// Rule-derived, no generation needed.
	if got := w.SurfaceHeightAt(1000, -1000); got != 5 {
		t.Errorf("SurfaceHeightAt = %d, want 5", got)
	}
}

func TestWorldSettingToggleRemeshes(t *testing.T) {
	w, backend, mesher := newTestWorld(t, nil)
	settleWorld(t, w, backend, mgl32.Vec3{8, 10, 8})

	before := mesher.builds.Load()
	w.SetFaceCulling(false)
	if mesher.builds.Load() <= before {
		t.Error("face culling toggle did not remesh loaded chunks")
	}

	before = mesher.builds.Load()
	w.SetMergeBlockMeshes(false)
	if mesher.builds.Load() <= before {
		t.Error("merge mode toggle did not remesh loaded chunks")
	}
}

func TestWorldMutationRemeshesNeighbors(t *testing.T) {
	w, backend, mesher := newTestWorld(t, nil)
	settleWorld(t, w, backend, mgl32.Vec3{8, 10, 8})

	// A removal on a chunk border dirties both chunks.
	if _, ok := w.RemoveBlock(mgl32.Vec3{0.5, 5.5, 8.5}); !ok {
		t.Fatal("border removal failed")
	}
	before := mesher.builds.Load()
	w.Tick(mgl32.Vec3{8, 10, 8})
	if mesher.builds.Load() < before+2 {
		t.Errorf("border mutation rebuilt %d chunks, want at least 2", mesher.builds.Load()-before)
	}
}

func TestWorldConcurrentTickAndMutation(t *testing.T) {
	w, backend, _ := newTestWorld(t, nil)
	pos := mgl32.Vec3{8, 10, 8}
	settleWorld(t, w, backend, pos)

	// Ticks rebuild dirty geometry from the chunk block maps while
	// placements and removals write them.
	stop := make(chan struct{})
	ticking := make(chan struct{})
	go func() {
		defer close(ticking)
		for {
			select {
			case <-stop:
				return
			default:
			}
			w.Tick(pos)
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < 3; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				p := mgl32.Vec3{float32(g*5+i%5) + 0.5, 6.5, float32(i%14) + 0.5}
				w.PlaceBlock(p, BlockTypeGlass)
				w.RemoveBlock(p)
			}
		}(g)
	}
	wg.Wait()
	close(stop)
	<-ticking

	w.Tick(pos)
	if got := w.BlockAt(mgl32.Vec3{2.5, 5.5, 2.5}); got != BlockTypeGrass {
		t.Errorf("surface block after concurrent mutation = %v, want grass", got)
	}
}

func TestWorldMergeModeToggleSyncsRepresentations(t *testing.T) {
	w, backend, _ := newTestWorld(t, nil)
	settleWorld(t, w, backend, mgl32.Vec3{8, 10, 8})

	key := GridKey{X: 3, Y: 5, Z: 3}
	cell, ok := w.index.Get(key)
	if !ok {
		t.Fatalf("no cell at %v", key)
	}
	if cell.Rep != nil {
		t.Fatal("merged mode cell carries a representation")
	}

	// Switching to per-block mode must attach a representation to every
	// cell generated without one.
	w.SetMergeBlockMeshes(false)
	visited := 0
	w.index.ForEachInChunk(ChunkCoord{0, 0}, func(key GridKey, c *Cell) {
		visited++
		if c.Rep == nil {
			t.Fatalf("cell %v has no representation after per-block switch", key)
		}
		if c.Rep.Position != key.World() {
			t.Fatalf("cell %v representation at %v, want %v", key, c.Rep.Position, key.World())
		}
	})
	if visited == 0 {
		t.Fatal("no cells visited")
	}

	// Switching back releases them to the merged chunk mesh.
	w.SetMergeBlockMeshes(true)
	w.index.ForEachInChunk(ChunkCoord{0, 0}, func(key GridKey, c *Cell) {
		if c.Rep != nil {
			t.Fatalf("cell %v kept its representation after merged switch", key)
		}
	})
}

func TestWorldSessionStable(t *testing.T) {
	w, _, _ := newTestWorld(t, nil)
	if w.Session() == "" {
		t.Fatal("empty session id")
	}
	if w.Session() != w.Session() {
		t.Fatal("session id not stable")
	}
}
