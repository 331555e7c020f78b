package camera

import (
	"sync"

	"github.com/Carmen-Shannon/flip/common"
	"github.com/Carmen-Shannon/flip/engine/renderer/bind_group_provider"
)

type cameraImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32
	up       [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera is a fixed perspective camera looking from a position toward a target point.
// All matrices are column-major and recomputed whenever a parameter changes.
type Camera interface {
	// Position returns the eye position in world space.
	Position() [3]float32

	// Target returns the point the camera looks at.
	Target() [3]float32

	// Up returns the camera up vector.
	Up() [3]float32

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the viewport aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping distance.
	Near() float32

	// Far returns the far clipping distance.
	Far() float32

	// ViewMatrix returns the world-to-view transform.
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the view-to-clip transform.
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection * view.
	ViewProjectionMatrix() [16]float32

	// ViewDepth returns the distance of a world-space point in front of the camera along its
	// viewing axis. Larger values are farther away.
	//
	// Parameters:
	//   - p: the world-space point
	//
	// Returns:
	//   - float32: the view-space depth
	ViewDepth(p [3]float32) float32

	// Uniform packs the camera state into its GPU representation.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform ready to marshal
	Uniform() GPUCameraUniform

	// BindGroupProvider returns the provider owning the camera's GPU uniform buffer, or nil.
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPosition moves the eye.
	SetPosition(p [3]float32)

	// SetTarget changes the look-at point.
	SetTarget(t [3]float32)

	// SetFov sets the vertical field of view in radians.
	SetFov(fov float32)

	// SetAspect sets the viewport aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width divided by height
	SetAspect(aspect float32)

	// SetClip sets the near and far clipping distances.
	SetClip(near, far float32)

	// SetBindGroupProvider assigns the provider owning the camera's GPU resources.
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera at (0, 0, 5) looking at the origin with a 45 degree field of view,
// then applies options.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: [3]float32{0, 0, 5},
		up:       [3]float32{0, 1, 0},
		fov:      common.DegToRad(45),
		aspect:   1.0,
		near:     0.1,
		far:      100.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) ViewDepth(p [3]float32) float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	// view space looks down -Z
	return -common.TransformPoint(c.viewMatrix[:], p)[2]
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj: c.viewProjectionMatrix,
		Position: c.position,
	}
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return c.bindGroupProvider
}

func (c *cameraImpl) SetPosition(p [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(t [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetClip(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near, c.far = near, far
	c.updateMatrices()
}

func (c *cameraImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	c.bindGroupProvider = provider
}

// updateMatrices must be called with mu held.
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:], c.position, c.target, c.up)
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
