package node

import (
	"github.com/Carmen-Shannon/flip/engine/mesh"
	"github.com/Carmen-Shannon/flip/engine/renderer/material"
)

// NodeBuilderOption is a functional option for configuring a Node during construction.
type NodeBuilderOption func(*node)

// WithName sets the node's descriptive name.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: functional option to set the name
func WithName(name string) NodeBuilderOption {
	return func(n *node) {
		n.name = name
	}
}

// WithTransform makes the node use an existing Transform, so the caller keeps a handle to animate it.
//
// Parameters:
//   - t: the transform to share, ignored when nil
//
// Returns:
//   - NodeBuilderOption: functional option to set the transform
func WithTransform(t *Transform) NodeBuilderOption {
	return func(n *node) {
		if t != nil {
			n.transform = t
		}
	}
}

// WithPosition sets the local position.
func WithPosition(x, y, z float32) NodeBuilderOption {
	return func(n *node) {
		n.transform.Position = [3]float32{x, y, z}
	}
}

// WithRotation sets the local Euler XYZ rotation in radians.
func WithRotation(rx, ry, rz float32) NodeBuilderOption {
	return func(n *node) {
		n.transform.Rotation = [3]float32{rx, ry, rz}
	}
}

// WithScale sets a uniform local scale.
func WithScale(s float32) NodeBuilderOption {
	return func(n *node) {
		n.transform.Scale = [3]float32{s, s, s}
	}
}

// WithMesh sets the geometry drawn at this node.
func WithMesh(m mesh.Mesh) NodeBuilderOption {
	return func(n *node) {
		n.mesh = m
	}
}

// WithMaterial sets the surface the mesh is shaded with.
func WithMaterial(m material.Material) NodeBuilderOption {
	return func(n *node) {
		n.material = m
	}
}

// WithChildren attaches children at construction.
//
// Parameters:
//   - children: the nodes to attach
//
// Returns:
//   - NodeBuilderOption: functional option to attach children
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *node) {
		n.Add(children...)
	}
}

// WithVisible sets the initial visibility.
func WithVisible(visible bool) NodeBuilderOption {
	return func(n *node) {
		n.visible = visible
	}
}
