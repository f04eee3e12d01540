// Package blockmodel abstracts the source of renderable and collidable
// block representations. The terrain engine never touches assets or a
// rendering backend directly; it asks a Provider for a Representation
// and attaches the result to the cell that owns it.
package blockmodel

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Box is a single axis-aligned collision volume in model space.
// Providers must return exactly one unit box per block representation.
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// UnitBox is the collision volume of a standard block, spanning one
// grid cell from its origin corner.
func UnitBox() Box {
	return Box{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
}

// Translate returns the box moved by delta.
func (b Box) Translate(delta mgl32.Vec3) Box {
	return Box{Min: b.Min.Add(delta), Max: b.Max.Add(delta)}
}

// Representation is the renderable+collidable value object for one
// block instance. It carries no rotation or scale: the contract with
// the engine is an axis-aligned model positioned purely by Position.
type Representation struct {
	// Block identifies the block type the representation was built for.
	Block uint16
	// MeshID is an opaque handle into the rendering backend.
	MeshID uint32
	// Box is the single collision volume, in model space.
	Box Box
	// Position is the world-space origin of the instance. Set by the
	// engine when the representation is attached to a cell.
	Position mgl32.Vec3
}

// Provider supplies block representations. Implementations wrap
// whatever asset pipeline the host engine uses.
type Provider interface {
	// Representation builds a fresh representation for a block type.
	Representation(block uint16) (*Representation, error)
	// Clone copies a cached template for a block type. This is the
	// fast path used during bulk chunk generation.
	Clone(block uint16) (*Representation, error)
}

// StaticProvider serves representations from a fixed template table.
// It is the default Provider for headless use and tests.
type StaticProvider struct {
	mu        sync.RWMutex
	templates map[uint16]Representation
	nextMesh  uint32
}

// NewStaticProvider creates an empty provider. Register templates
// before handing it to the engine.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		templates: make(map[uint16]Representation),
		nextMesh:  1,
	}
}

// Register installs a template for a block type with a unit collision
// box and a freshly allocated mesh handle.
func (p *StaticProvider) Register(block uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.templates[block] = Representation{
		Block:  block,
		MeshID: p.nextMesh,
		Box:    UnitBox(),
	}
	p.nextMesh++
}

// Representation implements Provider.
func (p *StaticProvider) Representation(block uint16) (*Representation, error) {
	return p.Clone(block)
}

// Clone implements Provider.
func (p *StaticProvider) Clone(block uint16) (*Representation, error) {
	p.mu.RLock()
	tpl, ok := p.templates[block]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("blockmodel: no template registered for block %d", block)
	}
	rep := tpl
	return &rep, nil
}
