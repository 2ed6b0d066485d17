// Package lighting provides directional light helpers for terrain shading.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sun is a directional light described by compass angles in degrees.
// Azimuth is measured counterclockwise from +x around z and elevation
// from the xy plane toward +z.
type Sun struct {
	Azimuth   float32
	Elevation float32
}

// DefaultSun lights the terrain from the southwest, high in the sky.
func DefaultSun() Sun {
	return Sun{Azimuth: 215, Elevation: 60}
}

// ToSun returns the unit vector pointing from the scene toward the sun.
func (s Sun) ToSun() mgl32.Vec3 {
	az := float64(mgl32.DegToRad(s.Azimuth))
	el := float64(mgl32.DegToRad(s.Elevation))
	return mgl32.Vec3{
		float32(math.Cos(el) * math.Cos(az)),
		float32(math.Cos(el) * math.Sin(az)),
		float32(math.Sin(el)),
	}
}

// Direction returns the direction light travels, from the sun toward the scene.
func (s Sun) Direction() mgl32.Vec3 {
	return s.ToSun().Mul(-1)
}
