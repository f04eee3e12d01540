package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type gridSet map[[3]int]struct{}

func (g gridSet) Solid(x, y, z int) bool {
	_, ok := g[[3]int{x, y, z}]
	return ok
}

func approxEq(a, b float32) bool {
	d := a - b
	return d < 1e-4 && d > -1e-4
}

func TestPlayerBoxDimensions(t *testing.T) {
	min, max := PlayerBox(mgl32.Vec3{10, 4, -2})
	if got := max.X() - min.X(); !approxEq(got, PlayerWidth) {
		t.Errorf("width %v, want %v", got, PlayerWidth)
	}
	if got := max.Y() - min.Y(); !approxEq(got, PlayerHeight) {
		t.Errorf("height %v, want %v", got, PlayerHeight)
	}
	if min.Y() != 4 {
		t.Errorf("box bottom %v, want the feet position", min.Y())
	}
	if !approxEq(min.X(), 9.7) || !approxEq(max.X(), 10.3) {
		t.Errorf("box not centered on X: [%v, %v]", min.X(), max.X())
	}
}

func TestBoxesOverlap(t *testing.T) {
	a0, a1 := mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}
	cases := []struct {
		min, max mgl32.Vec3
		want     bool
	}{
		{mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1.5, 1.5, 1.5}, true},
		{mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{2, 2, 2}, true},
		{mgl32.Vec3{2, 0, 0}, mgl32.Vec3{3, 1, 1}, false},
		// Touching faces do not count as overlap.
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{2, 1, 1}, false},
	}
	for _, c := range cases {
		if got := BoxesOverlap(a0, a1, c.min, c.max); got != c.want {
			t.Errorf("BoxesOverlap(unit, %v-%v) = %v, want %v", c.min, c.max, got, c.want)
		}
	}
}

func TestIntersectsBlock(t *testing.T) {
	pos := mgl32.Vec3{8, 10, 8}
	// Feet cell and head cell both intersect.
	if !IntersectsBlock(pos, 8, 10, 8) {
		t.Error("feet cell should intersect")
	}
	if !IntersectsBlock(pos, 7, 11, 7) {
		t.Error("head-height cell overlapping the box corner should intersect")
	}
	// The cell directly under the feet only touches, never overlaps.
	if IntersectsBlock(pos, 8, 9, 8) {
		t.Error("cell under the feet should not intersect")
	}
	if IntersectsBlock(pos, 10, 10, 8) {
		t.Error("distant cell should not intersect")
	}
}

func TestCollides(t *testing.T) {
	g := gridSet{}
	g[[3]int{8, 10, 8}] = struct{}{}

	if !Collides(mgl32.Vec3{8.5, 10.5, 8.5}, g) {
		t.Error("player inside a solid cell should collide")
	}
	if Collides(mgl32.Vec3{8.5, 11.5, 8.5}, g) {
		t.Error("player standing on top of the cell should not collide")
	}
	if Collides(mgl32.Vec3{20, 10, 20}, g) {
		t.Error("player far away should not collide")
	}
}

func TestCollidesSpansCells(t *testing.T) {
	// The 1.8 tall box spans three cells vertically; a solid at head
	// height must register.
	g := gridSet{}
	g[[3]int{0, 11, 0}] = struct{}{}
	if !Collides(mgl32.Vec3{0.5, 10.0, 0.5}, g) {
		t.Error("head-height solid not detected")
	}
}
