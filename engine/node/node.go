package node

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/flip/common"
	"github.com/Carmen-Shannon/flip/engine/mesh"
	"github.com/Carmen-Shannon/flip/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/flip/engine/renderer/material"
)

var nextID atomic.Uint64

type node struct {
	id        uint64
	name      string
	transform *Transform
	mesh      mesh.Mesh
	material  material.Material
	parent    *node
	children  []*node
	visible   bool

	world             [16]float32
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Node is an element of the scene graph. A node carries a local Transform and optionally a mesh and a
// material; nodes with both are drawn. World matrices are the product of every ancestor's local matrix
// and are refreshed by UpdateWorld once per frame, after animation and before drawing.
type Node interface {
	// ID returns the node's unique identifier.
	//
	// Returns:
	//   - uint64: the node ID
	ID() uint64

	// Name returns the node's descriptive name.
	Name() string

	// Transform returns the node's local transform. The pointer is stable for the node's lifetime.
	//
	// Returns:
	//   - *Transform: the local transform
	Transform() *Transform

	Mesh() mesh.Mesh
	Material() material.Material

	// Drawable reports whether the node has both a mesh and a material.
	Drawable() bool

	// Parent returns the parent node, or nil for a root.
	Parent() Node

	// Children returns the direct children in insertion order.
	Children() []Node

	// Add attaches children to this node. A child already attached elsewhere is moved.
	//
	// Parameters:
	//   - children: the nodes to attach
	Add(children ...Node)

	// Visible reports whether the node and its subtree are drawn.
	Visible() bool
	SetVisible(visible bool)

	// UpdateWorld recomputes the world matrix of this node and its whole subtree.
	//
	// Parameters:
	//   - parent: the parent's world matrix, nil for identity
	UpdateWorld(parent *[16]float32)

	// WorldMatrix returns the world matrix computed by the last UpdateWorld.
	WorldMatrix() [16]float32

	// WorldPosition returns the translation column of the world matrix.
	WorldPosition() [3]float32

	// ModelData packs the world and normal matrices for upload.
	//
	// Returns:
	//   - mesh.GPUModelData: the per-node uniform
	ModelData() mesh.GPUModelData

	// Traverse visits the node and its descendants depth first. Returning false from fn skips the
	// visited node's children.
	//
	// Parameters:
	//   - fn: the visitor
	Traverse(fn func(Node) bool)

	// BindGroupProvider returns the provider holding the node's model uniform, or nil.
	BindGroupProvider() bind_group_provider.BindGroupProvider
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Node = &node{}

// NewNode creates a visible node with an identity transform.
//
// Parameters:
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		id:        nextID.Add(1),
		transform: NewTransform(),
		visible:   true,
	}
	common.Identity(n.world[:])
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *node) ID() uint64 {
	return n.id
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Transform() *Transform {
	return n.transform
}

func (n *node) Mesh() mesh.Mesh {
	return n.mesh
}

func (n *node) Material() material.Material {
	return n.material
}

func (n *node) Drawable() bool {
	return n.mesh != nil && n.material != nil
}

func (n *node) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *node) Add(children ...Node) {
	for _, c := range children {
		child, ok := c.(*node)
		if !ok || child == nil || child == n {
			continue
		}
		if child.parent != nil {
			child.parent.remove(child)
		}
		child.parent = n
		n.children = append(n.children, child)
	}
}

func (n *node) remove(child *node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *node) Visible() bool {
	return n.visible
}

func (n *node) SetVisible(visible bool) {
	n.visible = visible
}

func (n *node) UpdateWorld(parent *[16]float32) {
	local := n.transform.Matrix()
	if parent == nil {
		n.world = local
	} else {
		common.Mul4(n.world[:], parent[:], local[:])
	}
	for _, c := range n.children {
		c.UpdateWorld(&n.world)
	}
}

func (n *node) WorldMatrix() [16]float32 {
	return n.world
}

func (n *node) WorldPosition() [3]float32 {
	return [3]float32{n.world[12], n.world[13], n.world[14]}
}

func (n *node) ModelData() mesh.GPUModelData {
	md := mesh.GPUModelData{Model: n.world}
	common.NormalMatrix(md.Normal[:], n.world[:])
	return md
}

func (n *node) Traverse(fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

func (n *node) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return n.bindGroupProvider
}

func (n *node) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	n.bindGroupProvider = provider
}
