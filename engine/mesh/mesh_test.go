package mesh

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTorusCounts(t *testing.T) {
	tests := []struct {
		name  string
		shape TorusShape
	}{
		{"edge ring", TorusShape{Radius: 1, Tube: 0.025, RadialSegments: 32, TubularSegments: 128}},
		{"spiral ring", TorusShape{Radius: 0.45, Tube: 0.02, RadialSegments: 16, TubularSegments: 128}},
		{"minimal", TorusShape{Radius: 1, Tube: 0.5, RadialSegments: 3, TubularSegments: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewTorus(tt.shape)
			require.NoError(t, err)
			assert.Equal(t, (tt.shape.RadialSegments+1)*(tt.shape.TubularSegments+1), m.VertexCount())
			assert.Equal(t, tt.shape.RadialSegments*tt.shape.TubularSegments*6, m.IndexCount())
			assert.InDelta(t, tt.shape.Radius+tt.shape.Tube, m.BoundingRadius(), 1e-5)
			assert.Equal(t, tt.shape.Key(), m.Key())
			for _, idx := range m.Indices() {
				assert.Less(t, int(idx), m.VertexCount())
			}
		})
	}
}

func TestTorusVerticesLieOnTube(t *testing.T) {
	s := TorusShape{Radius: 1.02, Tube: 0.08, RadialSegments: 8, TubularSegments: 24}
	m, err := NewTorus(s)
	require.NoError(t, err)

	for _, v := range m.Vertices() {
		p := v.Position
		// distance from the ring's center circle in the XY plane equals the tube radius
		ring := math32.Sqrt(p[0]*p[0]+p[1]*p[1]) - s.Radius
		assert.InDelta(t, s.Tube, math32.Sqrt(ring*ring+p[2]*p[2]), 1e-5)

		n := v.Normal
		assert.InDelta(t, 1, math32.Sqrt(n[0]*n[0]+n[1]*n[1]+n[2]*n[2]), 1e-5)
	}
}

func TestNewTorusRejectsDegenerate(t *testing.T) {
	_, err := NewTorus(TorusShape{Radius: 0, Tube: 0.1, RadialSegments: 8, TubularSegments: 8})
	assert.Error(t, err)
	_, err = NewTorus(TorusShape{Radius: 1, Tube: 0.1, RadialSegments: 2, TubularSegments: 8})
	assert.Error(t, err)
}

func TestNewCylinder(t *testing.T) {
	s := CylinderShape{RadiusTop: 0.3, RadiusBottom: 0.3, Height: 0.02, RadialSegments: 32}
	m, err := NewCylinder(s)
	require.NoError(t, err)

	// side rows plus a center and a ring per cap
	assert.Equal(t, 2*33+2*(1+33), m.VertexCount())
	assert.Equal(t, 32*6+2*32*3, m.IndexCount())

	var top, bottom int
	for _, v := range m.Vertices() {
		assert.InDelta(t, 0.01, math32.Abs(v.Position[1]), 1e-6)
		switch v.Normal {
		case [3]float32{0, 1, 0}:
			top++
		case [3]float32{0, -1, 0}:
			bottom++
		}
	}
	assert.Equal(t, 34, top)
	assert.Equal(t, 34, bottom)
}

func TestNewCylinderRejectsDegenerate(t *testing.T) {
	_, err := NewCylinder(CylinderShape{RadiusTop: 0.3, RadiusBottom: 0.3, Height: 0, RadialSegments: 32})
	assert.Error(t, err)
	_, err = NewCylinder(CylinderShape{RadiusTop: 0, RadiusBottom: 0, Height: 1, RadialSegments: 32})
	assert.Error(t, err)
}

func TestMeshData(t *testing.T) {
	verts := []GPUVertex{
		{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{-4, 0, 0}, Normal: [3]float32{0, 1, 0}},
	}
	m := NewMesh(WithName("pair"), WithGeometry(verts, []uint32{0, 1, 0}))

	assert.Equal(t, "pair", m.Key())
	assert.InDelta(t, 4, m.BoundingRadius(), 1e-6)

	vd := m.VertexData()
	require.Len(t, vd, 48)
	assert.Equal(t, float32(-4), math.Float32frombits(binary.LittleEndian.Uint32(vd[24:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(vd[24+16:])))

	id := m.IndexData()
	require.Len(t, id, 12)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(id[4:]))
}

func TestGPUTypeSizes(t *testing.T) {
	var v GPUVertex
	assert.Equal(t, 24, v.Size())
	assert.Len(t, v.Marshal(), 24)

	md := GPUModelData{}
	md.Normal[15] = 1
	assert.Equal(t, 128, md.Size())
	buf := md.Marshal()
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[124:])))
}
