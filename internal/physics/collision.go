package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Player bounding box dimensions.
const (
	PlayerWidth  = 0.6
	PlayerHeight = 1.8
)

// BlockQuerier answers solidity queries against the world. The block
// index implements it.
type BlockQuerier interface {
	Solid(x, y, z int) bool
}

// PlayerBox returns the AABB of a player standing at pos. pos is the
// feet position centered on X and Z.
func PlayerBox(pos mgl32.Vec3) (min, max mgl32.Vec3) {
	half := float32(PlayerWidth / 2)
	min = mgl32.Vec3{pos.X() - half, pos.Y(), pos.Z() - half}
	max = mgl32.Vec3{pos.X() + half, pos.Y() + PlayerHeight, pos.Z() + half}
	return min, max
}

// BoxesOverlap reports whether two AABBs intersect.
func BoxesOverlap(minA, maxA, minB, maxB mgl32.Vec3) bool {
	return minA.X() < maxB.X() && maxA.X() > minB.X() &&
		minA.Y() < maxB.Y() && maxA.Y() > minB.Y() &&
		minA.Z() < maxB.Z() && maxA.Z() > minB.Z()
}

// IntersectsBlock reports whether the player AABB at pos overlaps the
// grid cell (bx, by, bz). Cells span [k, k+1) on each axis.
func IntersectsBlock(pos mgl32.Vec3, bx, by, bz int) bool {
	pMin, pMax := PlayerBox(pos)
	bMin := mgl32.Vec3{float32(bx), float32(by), float32(bz)}
	bMax := mgl32.Vec3{float32(bx) + 1, float32(by) + 1, float32(bz) + 1}
	return BoxesOverlap(pMin, pMax, bMin, bMax)
}

// Collides reports whether the player AABB at pos overlaps any solid
// cell in the world.
func Collides(pos mgl32.Vec3, q BlockQuerier) bool {
	pMin, pMax := PlayerBox(pos)
	minX := int(math.Floor(float64(pMin.X())))
	maxX := int(math.Floor(float64(pMax.X())))
	minY := int(math.Floor(float64(pMin.Y())))
	maxY := int(math.Floor(float64(pMax.Y())))
	minZ := int(math.Floor(float64(pMin.Z())))
	maxZ := int(math.Floor(float64(pMax.Z())))

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				if q.Solid(x, y, z) && IntersectsBlock(pos, x, y, z) {
					return true
				}
			}
		}
	}
	return false
}
