package coin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/flip/common"
	"github.com/Carmen-Shannon/flip/engine/mesh"
	"github.com/Carmen-Shannon/flip/engine/node"
	"github.com/Carmen-Shannon/flip/engine/renderer/material"
	"github.com/chewxy/math32"
)

// RootScale is the uniform scale of the whole coin.
const RootScale = 0.8

// Group a part is attached to.
const (
	groupRoot = iota
	groupFront
	groupBack
)

// shape is a mesh description that can be generated later, on a worker.
type shape interface {
	Key() string
}

// part is one mesh of the coin before its geometry exists.
type part struct {
	name     string
	shape    shape
	material material.Material
	position [3]float32
	rotation [3]float32
	group    int
}

// Coin is the composed node tree.
type Coin struct {
	// Root carries the Transform the sequencer animates.
	Root node.Node

	// FrontSpiral and BackSpiral are the counter-rotating spiral groups.
	FrontSpiral node.Node
	BackSpiral  node.Node

	// Meshes and Materials count the distinct meshes and materials in the tree.
	Meshes    int
	Materials int
}

// Compose builds the coin: four edge rings, the outer rim, four decorative layers on each face,
// two counter-rotating spiral groups, two inner decorative rings and the center piece.
// Rings are tori in the XY plane, so the coin faces the camera along Z.
// Each distinct shape is generated once on the pool and shared by every node using it.
//
// Parameters:
//   - pool: the worker pool the geometry is generated on
//
// Returns:
//   - *Coin: the node tree
//   - error: an error if any mesh could not be generated
func Compose(pool worker.DynamicWorkerPool) (*Coin, error) {
	if pool == nil {
		return nil, errors.New("coin: Compose requires a worker pool")
	}
	parts := layout()

	// distinct shapes in first-use order
	index := make(map[string]int)
	var shapes []shape
	for _, p := range parts {
		if _, ok := index[p.shape.Key()]; !ok {
			index[p.shape.Key()] = len(shapes)
			shapes = append(shapes, p.shape)
		}
	}

	meshes := make([]mesh.Mesh, len(shapes))
	errs := make([]error, len(shapes))
	var wg sync.WaitGroup
	wg.Add(len(shapes))
	for i, s := range shapes {
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				meshes[i], errs[i] = generate(s)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to generate coin geometry: %w", err)
	}

	root := node.NewNode(node.WithName("coin"), node.WithScale(RootScale))
	front := node.NewNode(node.WithName("spiral:front"))
	back := node.NewNode(node.WithName("spiral:back"))
	groups := [...]node.Node{groupRoot: root, groupFront: front, groupBack: back}

	materials := make(map[material.Material]bool)
	for _, p := range parts {
		n := node.NewNode(
			node.WithName(p.name),
			node.WithMesh(meshes[index[p.shape.Key()]]),
			node.WithMaterial(p.material),
			node.WithPosition(p.position[0], p.position[1], p.position[2]),
			node.WithRotation(p.rotation[0], p.rotation[1], p.rotation[2]),
		)
		groups[p.group].Add(n)
		materials[p.material] = true
	}
	root.Add(front, back)

	return &Coin{
		Root:        root,
		FrontSpiral: front,
		BackSpiral:  back,
		Meshes:      len(meshes),
		Materials:   len(materials),
	}, nil
}

func generate(s shape) (mesh.Mesh, error) {
	switch v := s.(type) {
	case mesh.TorusShape:
		return mesh.NewTorus(v)
	case mesh.CylinderShape:
		return mesh.NewCylinder(v)
	}
	return nil, fmt.Errorf("unknown shape %T", s)
}

// layout describes every part of the coin.
func layout() []part {
	gold := common.MustHexToLinear("#FFD700")
	goldenrod := common.MustHexToLinear("#DAA520")
	darkGoldenrod := common.MustHexToLinear("#B8860B")
	peach := common.MustHexToLinear("#FFE5B4")
	bronze := common.MustHexToLinear("#8B7355")

	edge := material.NewMaterial(
		material.WithName("edge"),
		material.WithColor(gold),
		material.WithMetallic(1),
		material.WithRoughness(0.1),
		material.WithEnvMapIntensity(2),
		material.WithClearcoat(1, 0.2),
		material.WithReflectivity(1),
		material.WithIOR(1.5),
		material.WithSheen(0.8, 0.2, peach),
	)
	rim := material.NewMaterial(
		material.WithName("rim"),
		material.WithColor(darkGoldenrod),
		material.WithMetallic(1),
		material.WithRoughness(0.2),
		material.WithEnvMapIntensity(1.5),
		material.WithClearcoat(0.8, 0.2),
		material.WithSheen(0.5, 0.2, bronze),
	)
	layer := func(name string, color [3]float32) material.Material {
		return material.NewMaterial(
			material.WithName(name),
			material.WithColor(color),
			material.WithMetallic(1),
			material.WithRoughness(0.1),
			material.WithEnvMapIntensity(2),
			material.WithClearcoat(1, 0.1),
		)
	}
	layers := [2]material.Material{layer("layer:gold", gold), layer("layer:goldenrod", goldenrod)}
	decorative := material.NewMaterial(
		material.WithName("decorative"),
		material.WithColor(goldenrod),
		material.WithMetallic(1),
		material.WithRoughness(0.2),
		material.WithEnvMapIntensity(1.5),
		material.WithClearcoat(0.8, 0.2),
		material.WithSheen(0.5, 0.2, bronze),
	)
	center := material.NewMaterial(
		material.WithName("center"),
		material.WithColor(gold),
		material.WithMetallic(1),
		material.WithRoughness(0.1),
		material.WithEnvMapIntensity(2),
		material.WithClearcoat(1, 0.1),
		material.WithReflectivity(1),
		material.WithIOR(1.5),
		material.WithSheen(0.8, 0.2, peach),
	)

	var parts []part
	for i := range 4 {
		parts = append(parts, part{
			name:     fmt.Sprintf("edge:%d", i),
			shape:    mesh.TorusShape{Radius: 1, Tube: 0.025, RadialSegments: 32, TubularSegments: 128},
			material: edge,
			position: [3]float32{0, (float32(i) - 1.5) * 0.03, 0},
		})
	}
	parts = append(parts, part{
		name:     "rim",
		shape:    mesh.TorusShape{Radius: 1.02, Tube: 0.08, RadialSegments: 32, TubularSegments: 128},
		material: rim,
	})

	for i := range 4 {
		f := float32(i)
		s := mesh.TorusShape{Radius: 1 - f*0.15, Tube: 0.035 + f*0.002, RadialSegments: 32, TubularSegments: 128}
		m := layers[i%2]
		y := 0.06 + f*0.004
		parts = append(parts,
			part{name: fmt.Sprintf("layer:front:%d", i), shape: s, material: m, position: [3]float32{0, y, 0}},
			part{name: fmt.Sprintf("layer:back:%d", i), shape: s, material: m, position: [3]float32{0, -y, 0}},
		)
	}

	for i := range 4 {
		f := float32(i)
		s := mesh.TorusShape{Radius: 0.45 + f*0.08, Tube: 0.02 + f*0.002, RadialSegments: 16, TubularSegments: 128}
		m := material.NewMaterial(
			material.WithName(fmt.Sprintf("spiral:%d", i)),
			material.WithColor(gold),
			material.WithMetallic(1),
			material.WithRoughness(0.05),
			material.WithEnvMapIntensity(2.5),
			material.WithClearcoat(1, 0.05),
			material.WithTransparent(0.9-f*0.03),
		)
		y := 0.07 + f*0.002
		turn := f * math32.Pi / 2
		parts = append(parts,
			part{name: fmt.Sprintf("spiral:front:%d", i), shape: s, material: m, position: [3]float32{0, y, 0}, rotation: [3]float32{0, turn, 0}, group: groupFront},
			part{name: fmt.Sprintf("spiral:back:%d", i), shape: s, material: m, position: [3]float32{0, -y, 0}, rotation: [3]float32{0, -turn, 0}, group: groupBack},
		)
	}

	for i, radius := range []float32{0.88, 0.96} {
		parts = append(parts, part{
			name:     fmt.Sprintf("decorative:%d", i),
			shape:    mesh.TorusShape{Radius: radius, Tube: 0.02, RadialSegments: 32, TubularSegments: 128},
			material: decorative,
		})
	}

	parts = append(parts, part{
		name:     "center",
		shape:    mesh.CylinderShape{RadiusTop: 0.3, RadiusBottom: 0.3, Height: 0.02, RadialSegments: 32},
		material: center,
	})
	return parts
}
