package world

import (
	"voxelforge/pkg/blockmodel"
)

// Vertex layout: position (3) + normal (3) + uv (2) floats per vertex.
const VertexStride = 8

// Mesh is an interleaved triangle mesh. Each visible block face
// contributes one quad: four vertices and six indices, counterclockwise
// winding seen from outside the block.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// FaceCount returns the number of quads in the mesh.
func (m *Mesh) FaceCount() int {
	return len(m.Indices) / 6
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / VertexStride
}

// Empty reports whether the mesh has no geometry.
func (m *Mesh) Empty() bool {
	return m == nil || len(m.Indices) == 0
}

// CellBox is one axis-aligned collision volume produced for an occupied
// cell.
type CellBox struct {
	Key GridKey
	Box blockmodel.Box
}

// ChunkGeometry is the output of meshing one chunk: the merged surface
// mesh plus one collision volume per occupied cell. Collision volumes
// are emitted for every cell regardless of face visibility.
type ChunkGeometry struct {
	Coord     ChunkCoord
	Mesh      *Mesh
	Colliders []CellBox
}

// NeighborQuerier answers cross-chunk occupancy questions during face
// culling. BlockIndex implements it.
type NeighborQuerier interface {
	Solid(x, y, z int) bool
}

// MeshBuilder turns a chunk's block map into geometry. Implementations
// must be deterministic: identical inputs produce byte-identical
// meshes.
type MeshBuilder interface {
	Build(blocks *ChunkBlockMap, neighbors NeighborQuerier, faceCulling bool) *ChunkGeometry
}
