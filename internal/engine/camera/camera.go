// Package camera provides an orbiting camera for terrain viewing.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mountainhome/internal/engine/mesh"
)

// Up is the world up axis. Terrain z is height.
var Up = mgl32.Vec3{0, 0, 1}

// OrbitCamera orbits around a center point in a z-up world.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // elevation above the xy plane, radians
	Yaw      float32 // rotation around z, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	FOV, Near float32
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        64,
		Pitch:           0.6,
		MinDistance:     4,
		MaxDistance:     4096,
		MinPitch:        0.05,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FOV:             45,
		Near:            0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp, sp := math.Cos(float64(c.Pitch)), math.Sin(float64(c.Pitch))
	cy, sy := math.Cos(float64(c.Yaw)), math.Sin(float64(c.Yaw))
	return c.Center.Add(mgl32.Vec3{
		c.Distance * float32(cp*cy),
		c.Distance * float32(cp*sy),
		c.Distance * float32(sp),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, Up)
}

// ProjectionMatrix returns a perspective projection whose far plane keeps
// the whole orbit sphere visible.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Distance*4)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}

// Rotate advances yaw by angle radians.
func (c *OrbitCamera) Rotate(angle float32) {
	c.Yaw = wrapAngle(c.Yaw + angle)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Rotate(-deltaX * c.DragSensitivity)
	c.Pitch = mgl32.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center in the xy plane relative to the view.
func (c *OrbitCamera) HandleMovement(forward, right float32) {
	speed := c.Distance * 0.01
	cy, sy := float32(math.Cos(float64(c.Yaw))), float32(math.Sin(float64(c.Yaw)))

	// The camera looks along -(cos yaw, sin yaw).
	c.Center[0] += (-cy*forward - sy*right) * speed
	c.Center[1] += (-sy*forward + cy*right) * speed
}

// FitToBounds centers the camera on b and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(b mesh.Bounds) {
	c.Center = b.Center()
	c.Distance = mgl32.Clamp(b.Size().Len(), c.MinDistance, c.MaxDistance)
}

func wrapAngle(a float32) float32 {
	const twoPi = 2 * math.Pi
	for a >= twoPi {
		a -= twoPi
	}
	for a < 0 {
		a += twoPi
	}
	return a
}
