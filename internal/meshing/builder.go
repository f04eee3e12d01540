package meshing

import (
	"sort"

	"voxelforge/internal/profiling"
	"voxelforge/pkg/blockmodel"

	"voxelforge/internal/world"
)

// face describes one of the six cube faces: the neighbor direction the
// face points at, its normal, and its four corners relative to the cell
// origin in counterclockwise order seen from outside.
type face struct {
	dx, dy, dz int
	normal     [3]float32
	corners    [4][3]float32
}

// Fixed emission order. Together with ascending cell order this makes
// the output byte-identical for identical inputs.
var faces = [6]face{
	{-1, 0, 0, [3]float32{-1, 0, 0}, [4][3]float32{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{+1, 0, 0, [3]float32{1, 0, 0}, [4][3]float32{{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}}},
	{0, -1, 0, [3]float32{0, -1, 0}, [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{0, +1, 0, [3]float32{0, 1, 0}, [4][3]float32{{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}}},
	{0, 0, -1, [3]float32{0, 0, -1}, [4][3]float32{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}}},
	{0, 0, +1, [3]float32{0, 0, 1}, [4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
}

var quadUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Builder produces per-face culled chunk meshes. It implements
// world.MeshBuilder and is stateless, so one instance serves all
// workers.
type Builder struct{}

// NewBuilder creates a mesh builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build meshes one chunk. Each occupied cell contributes one quad per
// visible face; with culling enabled a face is visible only when the
// neighboring cell, in this chunk or the adjacent one, is empty. Every
// occupied cell contributes a collision volume regardless of
// visibility.
func (b *Builder) Build(blocks *world.ChunkBlockMap, neighbors world.NeighborQuerier, faceCulling bool) *world.ChunkGeometry {
	defer profiling.Track("meshing.Build")()

	keys := blocks.Keys()
	sort.Slice(keys, func(i, j int) bool {
		a, c := keys[i], keys[j]
		if a.X != c.X {
			return a.X < c.X
		}
		if a.Y != c.Y {
			return a.Y < c.Y
		}
		return a.Z < c.Z
	})

	mesh := &world.Mesh{
		Vertices: make([]float32, 0, len(keys)*4*world.VertexStride),
		Indices:  make([]uint32, 0, len(keys)*6),
	}
	colliders := make([]world.CellBox, 0, len(keys))

	for _, key := range keys {
		colliders = append(colliders, world.CellBox{
			Key: key,
			Box: blockmodel.UnitBox().Translate(key.World()),
		})
		for _, f := range faces {
			if faceCulling && neighbors.Solid(key.X+f.dx, key.Y+f.dy, key.Z+f.dz) {
				continue
			}
			emitQuad(mesh, key, f)
		}
	}

	return &world.ChunkGeometry{
		Coord:     blocks.Coord,
		Mesh:      mesh,
		Colliders: colliders,
	}
}

// emitQuad appends one face quad: four vertices and six indices forming
// two counterclockwise triangles.
func emitQuad(mesh *world.Mesh, key world.GridKey, f face) {
	base := uint32(len(mesh.Vertices) / world.VertexStride)
	for i, c := range f.corners {
		mesh.Vertices = append(mesh.Vertices,
			float32(key.X)+c[0], float32(key.Y)+c[1], float32(key.Z)+c[2],
			f.normal[0], f.normal[1], f.normal[2],
			quadUVs[i][0], quadUVs[i][1],
		)
	}
	mesh.Indices = append(mesh.Indices,
		base, base+1, base+2,
		base+2, base+3, base,
	)
}
