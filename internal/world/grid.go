package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// BlockSize is the world-space edge length of one grid cell.
	BlockSize = 1.0

	// ChunkSize is the number of columns per chunk edge.
	ChunkSize = 16
)

// GridKey identifies one unit-cube cell. A cell spans
// [k*BlockSize, (k+1)*BlockSize) on each axis.
type GridKey struct {
	X, Y, Z int
}

// KeyFromWorld derives the grid key containing a world position.
// Floor division, not rounding: (5.4, 5.6, 5.1) maps to (5, 5, 5).
func KeyFromWorld(pos mgl32.Vec3) GridKey {
	return GridKey{
		X: int(math.Floor(float64(pos.X()) / BlockSize)),
		Y: int(math.Floor(float64(pos.Y()) / BlockSize)),
		Z: int(math.Floor(float64(pos.Z()) / BlockSize)),
	}
}

// World returns the world-space origin corner of the cell. For integer
// grid keys this round-trips exactly through KeyFromWorld.
func (k GridKey) World() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(k.X) * BlockSize,
		float32(k.Y) * BlockSize,
		float32(k.Z) * BlockSize,
	}
}

// Array returns the key as a plain [3]int, the shape the physics
// backend keys colliders by.
func (k GridKey) Array() [3]int {
	return [3]int{k.X, k.Y, k.Z}
}

// Chunk returns the chunk coordinate containing the cell.
func (k GridKey) Chunk() ChunkCoord {
	return ChunkCoord{X: floorDiv(k.X, ChunkSize), Z: floorDiv(k.Z, ChunkSize)}
}

// ChunkCoord identifies a chunk: a ChunkSize x ChunkSize column range
// across all heights.
type ChunkCoord struct {
	X, Z int
}

// ChunkFromWorld derives the chunk coordinate containing a world position.
func ChunkFromWorld(pos mgl32.Vec3) ChunkCoord {
	return KeyFromWorld(pos).Chunk()
}

// Origin returns the world-space X,Z of the chunk's lowest column.
func (c ChunkCoord) Origin() (int, int) {
	return c.X * ChunkSize, c.Z * ChunkSize
}

// Contains reports whether a grid key lies in the chunk's column range.
func (c ChunkCoord) Contains(k GridKey) bool {
	return k.Chunk() == c
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns the non-negative remainder of a/b.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
