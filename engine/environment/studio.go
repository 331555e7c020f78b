package environment

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/lucasb-eyer/go-colorful"
)

// softbox is a bright rectangular panel of the studio, placed by longitude and latitude in radians.
type softbox struct {
	lon, lat     float32
	halfW, halfH float32
	radiance     float32
}

// studioLights are a key light front right, a fill front left, an overhead strip and a rim behind.
// Front is +Z, where the camera sits.
var studioLights = []softbox{
	{lon: 1.0, lat: 0.45, halfW: 0.35, halfH: 0.25, radiance: 1},
	{lon: 2.4, lat: 0.3, halfW: 0.3, halfH: 0.2, radiance: 0.7},
	{lon: 0, lat: 1.3, halfW: 1.4, halfH: 0.12, radiance: 0.9},
	{lon: -1.57, lat: 0.2, halfW: 0.5, halfH: 0.15, radiance: 0.6},
}

const (
	floorRadiance   = 0.02
	horizonRadiance = 0.08
	ceilingRadiance = 0.03
)

// Studio renders the procedural studio as an sRGB encoded equirectangular image. Longitude is
// atan2(z, x), so column 0 faces -X and the center column +X. The top row is straight up.
//
// Parameters:
//   - width: the image width in pixels
//   - height: the image height in pixels
//
// Returns:
//   - *image.RGBA: the rendered map
func Studio(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		lat := math32.Pi/2 - (float32(y)+0.5)/float32(height)*math32.Pi
		for x := range width {
			lon := (float32(x)+0.5)/float32(width)*2*math32.Pi - math32.Pi
			r := StudioRadiance(lon, lat)
			c := colorful.LinearRgb(float64(r[0]), float64(r[1]), float64(r[2])).Clamped()
			r8, g8, b8 := c.RGB255()
			img.SetRGBA(x, y, color.RGBA{R: r8, G: g8, B: b8, A: 255})
		}
	}
	return img
}

// StudioRadiance returns the linear radiance seen in a direction given by longitude and latitude.
// The backdrop is a dark floor, a slightly brighter horizon band and a dim ceiling, with
// softboxes on top that have soft edges.
//
// Parameters:
//   - lon: longitude in [-pi, pi]
//   - lat: latitude in [-pi/2, pi/2]
//
// Returns:
//   - [3]float32: linear RGB radiance
func StudioRadiance(lon, lat float32) [3]float32 {
	var base float32
	if lat < 0 {
		base = floorRadiance + (horizonRadiance-floorRadiance)*math32.Exp(lat*6)
	} else {
		base = ceilingRadiance + (horizonRadiance-ceilingRadiance)*math32.Exp(-lat*4)
	}
	warm := [3]float32{1, 0.96, 0.9}
	out := [3]float32{base * warm[0], base * warm[1], base * warm[2]}

	for _, box := range studioLights {
		dLon := wrapAngle(lon - box.lon)
		// panels get wider toward the poles in equirect space
		halfW := box.halfW / max(math32.Cos(box.lat), 0.2)
		edge := panelMask(dLon, halfW) * panelMask(lat-box.lat, box.halfH)
		for i := range out {
			out[i] += edge * box.radiance
		}
	}
	return out
}

// panelMask is 1 inside |d| < half, falling off smoothly over a tenth of the extent.
func panelMask(d, half float32) float32 {
	soft := half * 0.1
	return 1 - smoothstep(half-soft, half+soft, math32.Abs(d))
}

func smoothstep(e0, e1, x float32) float32 {
	t := min(max((x-e0)/(e1-e0), 0), 1)
	return t * t * (3 - 2*t)
}

// wrapAngle maps an angle into [-pi, pi].
func wrapAngle(a float32) float32 {
	for a > math32.Pi {
		a -= 2 * math32.Pi
	}
	for a < -math32.Pi {
		a += 2 * math32.Pi
	}
	return a
}
