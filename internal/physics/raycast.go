package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelforge/internal/profiling"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0
)

// RaycastResult stores the result of a raycast operation.
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Distance         float32
	Hit              bool
}

// Raycast marches a ray from start along direction and returns the
// first solid cell hit plus the empty cell stepped through just before
// it (the placement target).
func Raycast(start mgl32.Vec3, direction mgl32.Vec3, minDist, maxDist float32, q BlockQuerier) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	stepSize := float32(0.02)
	steps := int(maxDist / stepSize)

	var lastEmptyPos [3]int
	haveEmpty := false
	result := RaycastResult{Hit: false}

	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}

		pos := start.Add(direction.Mul(dist))

		blockPos := [3]int{
			int(math.Floor(float64(pos.X()))),
			int(math.Floor(float64(pos.Y()))),
			int(math.Floor(float64(pos.Z()))),
		}

		if q.Solid(blockPos[0], blockPos[1], blockPos[2]) {
			result.HitPosition = blockPos
			result.Distance = dist
			result.Hit = true
			if haveEmpty {
				result.AdjacentPosition = lastEmptyPos
			} else {
				result.AdjacentPosition = blockPos
			}
			return result
		}

		lastEmptyPos = blockPos
		haveEmpty = true
	}

	return result
}
