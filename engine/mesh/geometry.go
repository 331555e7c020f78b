package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/flip/common"
	"github.com/chewxy/math32"
)

// TorusShape describes a ring around the Z axis, lying in the XY plane.
type TorusShape struct {
	Radius          float32 // distance from the center to the middle of the tube
	Tube            float32 // tube radius
	RadialSegments  int     // segments around the tube cross-section
	TubularSegments int     // segments around the ring
}

// Key returns a string identifying the shape, used to share identical meshes.
func (s TorusShape) Key() string {
	return fmt.Sprintf("torus(%g,%g,%d,%d)", s.Radius, s.Tube, s.RadialSegments, s.TubularSegments)
}

// CylinderShape describes a capped cylinder along the Y axis centered on the origin.
type CylinderShape struct {
	RadiusTop      float32
	RadiusBottom   float32
	Height         float32
	RadialSegments int
}

// Key returns a string identifying the shape, used to share identical meshes.
func (s CylinderShape) Key() string {
	return fmt.Sprintf("cylinder(%g,%g,%g,%d)", s.RadiusTop, s.RadiusBottom, s.Height, s.RadialSegments)
}

// NewTorus generates a torus mesh. Vertex rings are duplicated at the seams so every ring has
// TubularSegments+1 vertices and every cross-section RadialSegments+1.
//
// Parameters:
//   - s: the torus shape
//
// Returns:
//   - Mesh: the generated mesh
//   - error: an error if the shape is degenerate
func NewTorus(s TorusShape) (Mesh, error) {
	if s.Radius <= 0 || s.Tube <= 0 {
		return nil, fmt.Errorf("torus radius and tube must be positive, got %v and %v", s.Radius, s.Tube)
	}
	if s.RadialSegments < 3 || s.TubularSegments < 3 {
		return nil, fmt.Errorf("torus needs at least 3 segments per direction, got %d and %d", s.RadialSegments, s.TubularSegments)
	}

	vertices := make([]GPUVertex, 0, (s.RadialSegments+1)*(s.TubularSegments+1))
	for j := 0; j <= s.RadialSegments; j++ {
		v := float32(j) / float32(s.RadialSegments) * 2 * math32.Pi
		sv, cv := math32.Sincos(v)
		for i := 0; i <= s.TubularSegments; i++ {
			u := float32(i) / float32(s.TubularSegments) * 2 * math32.Pi
			su, cu := math32.Sincos(u)
			vertices = append(vertices, GPUVertex{
				Position: [3]float32{(s.Radius + s.Tube*cv) * cu, (s.Radius + s.Tube*cv) * su, s.Tube * sv},
				Normal:   [3]float32{cv * cu, cv * su, sv},
			})
		}
	}

	row := uint32(s.TubularSegments + 1)
	indices := make([]uint32, 0, s.RadialSegments*s.TubularSegments*6)
	for j := uint32(1); j <= uint32(s.RadialSegments); j++ {
		for i := uint32(1); i <= uint32(s.TubularSegments); i++ {
			a := row*j + i - 1
			b := row*(j-1) + i - 1
			c := row*(j-1) + i
			d := row*j + i
			indices = append(indices, a, b, d, b, c, d)
		}
	}

	return NewMesh(WithName("torus"), WithKey(s.Key()), WithGeometry(vertices, indices)), nil
}

// NewCylinder generates a capped cylinder mesh with one height segment.
//
// Parameters:
//   - s: the cylinder shape
//
// Returns:
//   - Mesh: the generated mesh
//   - error: an error if the shape is degenerate
func NewCylinder(s CylinderShape) (Mesh, error) {
	if s.Height <= 0 || s.RadiusTop < 0 || s.RadiusBottom < 0 || s.RadiusTop+s.RadiusBottom == 0 {
		return nil, fmt.Errorf("invalid cylinder dimensions: top %v, bottom %v, height %v", s.RadiusTop, s.RadiusBottom, s.Height)
	}
	if s.RadialSegments < 3 {
		return nil, fmt.Errorf("cylinder needs at least 3 radial segments, got %d", s.RadialSegments)
	}

	var vertices []GPUVertex
	var indices []uint32
	half := s.Height / 2
	slope := (s.RadiusBottom - s.RadiusTop) / s.Height
	segs := s.RadialSegments

	// side: row 0 at the top, row 1 at the bottom
	for y := range 2 {
		radius := s.RadiusTop + float32(y)*(s.RadiusBottom-s.RadiusTop)
		for x := 0; x <= segs; x++ {
			theta := float32(x) / float32(segs) * 2 * math32.Pi
			st, ct := math32.Sincos(theta)
			n := common.Normalize([3]float32{st, slope, ct})
			vertices = append(vertices, GPUVertex{
				Position: [3]float32{radius * st, half - float32(y)*s.Height, radius * ct},
				Normal:   n,
			})
		}
	}
	row := uint32(segs + 1)
	for x := uint32(0); x < uint32(segs); x++ {
		a, b, c, d := x, row+x, row+x+1, x+1
		indices = append(indices, a, b, d, b, c, d)
	}

	addCap := func(top bool) {
		radius, y, ny := s.RadiusTop, half, float32(1)
		if !top {
			radius, y, ny = s.RadiusBottom, -half, -1
		}
		if radius == 0 {
			return
		}
		center := uint32(len(vertices))
		vertices = append(vertices, GPUVertex{Position: [3]float32{0, y, 0}, Normal: [3]float32{0, ny, 0}})
		ring := uint32(len(vertices))
		for x := 0; x <= segs; x++ {
			theta := float32(x) / float32(segs) * 2 * math32.Pi
			st, ct := math32.Sincos(theta)
			vertices = append(vertices, GPUVertex{Position: [3]float32{radius * st, y, radius * ct}, Normal: [3]float32{0, ny, 0}})
		}
		for x := uint32(0); x < uint32(segs); x++ {
			if top {
				indices = append(indices, ring+x, ring+x+1, center)
			} else {
				indices = append(indices, ring+x+1, ring+x, center)
			}
		}
	}
	addCap(true)
	addCap(false)

	return NewMesh(WithName("cylinder"), WithKey(s.Key()), WithGeometry(vertices, indices)), nil
}
