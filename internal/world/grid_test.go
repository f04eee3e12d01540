package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestKeyFromWorldFloors(t *testing.T) {
	cases := []struct {
		pos  mgl32.Vec3
		want GridKey
	}{
		{mgl32.Vec3{5.4, 5.6, 5.1}, GridKey{5, 5, 5}},
		{mgl32.Vec3{0, 0, 0}, GridKey{0, 0, 0}},
		{mgl32.Vec3{0.999, 0.999, 0.999}, GridKey{0, 0, 0}},
		{mgl32.Vec3{-0.1, -0.1, -0.1}, GridKey{-1, -1, -1}},
		{mgl32.Vec3{-1.0, 2.0, -3.5}, GridKey{-1, 2, -4}},
		{mgl32.Vec3{16.0, 0, 31.9}, GridKey{16, 0, 31}},
	}
	for _, c := range cases {
		if got := KeyFromWorld(c.pos); got != c.want {
			t.Errorf("KeyFromWorld(%v) = %v, want %v", c.pos, got, c.want)
		}
	}
}

func TestKeyWorldRoundTrip(t *testing.T) {
	keys := []GridKey{{0, 0, 0}, {5, 5, 5}, {-3, 7, -12}, {100, 63, -100}}
	for _, k := range keys {
		if got := KeyFromWorld(k.World()); got != k {
			t.Errorf("round trip of %v gave %v", k, got)
		}
	}
}

func TestKeyInteriorStaysInCell(t *testing.T) {
	// Any point inside [k, k+1) must map back to k.
	k := GridKey{3, -2, 7}
	base := k.World()
	for _, off := range []float32{0.0, 0.25, 0.5, 0.99} {
		p := mgl32.Vec3{base.X() + off, base.Y() + off, base.Z() + off}
		if got := KeyFromWorld(p); got != k {
			t.Errorf("offset %v mapped to %v, want %v", off, got, k)
		}
	}
}

func TestChunkCoord(t *testing.T) {
	cases := []struct {
		key  GridKey
		want ChunkCoord
	}{
		{GridKey{0, 0, 0}, ChunkCoord{0, 0}},
		{GridKey{15, 200, 15}, ChunkCoord{0, 0}},
		{GridKey{16, 0, 0}, ChunkCoord{1, 0}},
		{GridKey{-1, 0, -1}, ChunkCoord{-1, -1}},
		{GridKey{-16, 0, -17}, ChunkCoord{-1, -2}},
	}
	for _, c := range cases {
		if got := c.key.Chunk(); got != c.want {
			t.Errorf("%v.Chunk() = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestChunkOriginContains(t *testing.T) {
	c := ChunkCoord{-1, 2}
	ox, oz := c.Origin()
	if ox != -16 || oz != 32 {
		t.Fatalf("Origin() = (%d,%d), want (-16,32)", ox, oz)
	}
	if !c.Contains(GridKey{-16, 0, 32}) {
		t.Error("origin corner should be inside the chunk")
	}
	if !c.Contains(GridKey{-1, 500, 47}) {
		t.Error("far corner should be inside the chunk")
	}
	if c.Contains(GridKey{0, 0, 32}) {
		t.Error("x=0 belongs to the next chunk")
	}
	if c.Contains(GridKey{-16, 0, 48}) {
		t.Error("z=48 belongs to the next chunk")
	}
}

func TestChunkFromWorldMatchesKeyChunk(t *testing.T) {
	positions := []mgl32.Vec3{
		{0, 0, 0}, {15.9, 3, 15.9}, {16.0, 3, -0.1}, {-31.5, 0, 47.2},
	}
	for _, p := range positions {
		if got, want := ChunkFromWorld(p), KeyFromWorld(p).Chunk(); got != want {
			t.Errorf("ChunkFromWorld(%v) = %v, key chunk = %v", p, got, want)
		}
	}
}
