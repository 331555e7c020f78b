package coin

import (
	"fmt"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/flip/common"
	"github.com/Carmen-Shannon/flip/engine/environment"
	"github.com/Carmen-Shannon/flip/engine/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compose(t *testing.T) *Coin {
	t.Helper()
	c, err := Compose(worker.NewDynamicWorkerPool(2, 8, time.Second))
	require.NoError(t, err)
	return c
}

func byName(root node.Node) map[string]node.Node {
	out := make(map[string]node.Node)
	root.Traverse(func(n node.Node) bool {
		out[n.Name()] = n
		return true
	})
	return out
}

func TestComposeStructure(t *testing.T) {
	c := compose(t)

	assert.Equal(t, 13, c.Meshes)
	assert.Equal(t, 10, c.Materials)
	assert.Equal(t, "coin", c.Root.Name())
	assert.Equal(t, [3]float32{RootScale, RootScale, RootScale}, c.Root.Transform().Scale)

	require.Len(t, c.FrontSpiral.Children(), 4)
	require.Len(t, c.BackSpiral.Children(), 4)
	assert.Same(t, c.Root, c.FrontSpiral.Parent())
	assert.Same(t, c.Root, c.BackSpiral.Parent())

	// 4 edge rings, the rim, 8 layers, 2 decorative rings, the center and the two groups
	assert.Len(t, c.Root.Children(), 18)

	drawables := 0
	names := make(map[string]bool)
	c.Root.Traverse(func(n node.Node) bool {
		assert.False(t, names[n.Name()], "duplicate node %q", n.Name())
		names[n.Name()] = true
		if n.Drawable() {
			drawables++
		}
		return true
	})
	assert.Equal(t, 24, drawables)
}

func TestComposeSharesMeshes(t *testing.T) {
	nodes := byName(compose(t).Root)

	assert.Same(t, nodes["edge:0"].Mesh(), nodes["edge:3"].Mesh())
	assert.Same(t, nodes["layer:front:2"].Mesh(), nodes["layer:back:2"].Mesh())
	assert.Same(t, nodes["spiral:front:1"].Mesh(), nodes["spiral:back:1"].Mesh())
	assert.NotSame(t, nodes["layer:front:0"].Mesh(), nodes["layer:front:1"].Mesh())
	assert.Same(t, nodes["layer:front:0"].Material(), nodes["layer:back:2"].Material())
}

func TestComposeMirrorsFaces(t *testing.T) {
	nodes := byName(compose(t).Root)

	tests := []struct {
		front, back string
	}{
		{"layer:front:0", "layer:back:0"},
		{"layer:front:3", "layer:back:3"},
		{"spiral:front:0", "spiral:back:0"},
		{"spiral:front:3", "spiral:back:3"},
	}
	for _, tt := range tests {
		t.Run(tt.front, func(t *testing.T) {
			f := nodes[tt.front].Transform()
			b := nodes[tt.back].Transform()
			assert.Greater(t, f.Position[1], float32(0))
			assert.Equal(t, -f.Position[1], b.Position[1])
			assert.Equal(t, -f.Rotation[1], b.Rotation[1])
		})
	}
}

func TestComposeMaterials(t *testing.T) {
	nodes := byName(compose(t).Root)

	assert.Equal(t, common.MustHexToLinear("#B8860B"), nodes["rim"].Material().Color())
	assert.Equal(t, common.MustHexToLinear("#DAA520"), nodes["layer:front:1"].Material().Color())
	assert.Equal(t, common.MustHexToLinear("#FFD700"), nodes["center"].Material().Color())

	for i, want := range []float32{0.9, 0.87, 0.84, 0.81} {
		m := nodes[fmt.Sprintf("spiral:front:%d", i)].Material()
		assert.True(t, m.Transparent())
		assert.InDelta(t, want, m.Opacity(), 1e-6)
	}
	assert.False(t, nodes["edge:0"].Material().Transparent())
	assert.NotNil(t, nodes["center"].Mesh())
}

func TestComposeRequiresPool(t *testing.T) {
	c, err := Compose(nil)
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestPrepareDeliversOnce(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(2, 8, time.Second)
	env := environment.NewEnvironment(environment.WithResolution(64, 32))

	select {
	case a := <-Prepare(pool, env):
		require.NoError(t, a.Err)
		require.NotNil(t, a.Coin)
		assert.True(t, env.Baked())
		assert.Equal(t, 13, a.Coin.Meshes)
	case <-time.After(30 * time.Second):
		t.Fatal("assets were never delivered")
	}
}
