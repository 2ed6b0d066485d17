package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSun_ToSun(t *testing.T) {
	tests := []struct {
		name string
		sun  Sun
		want mgl32.Vec3
	}{
		{"zenith", Sun{Azimuth: 123, Elevation: 90}, mgl32.Vec3{0, 0, 1}},
		{"east horizon", Sun{Azimuth: 0, Elevation: 0}, mgl32.Vec3{1, 0, 0}},
		{"north horizon", Sun{Azimuth: 90, Elevation: 0}, mgl32.Vec3{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sun.ToSun(); got.Sub(tt.want).Len() > 1e-5 {
				t.Errorf("ToSun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSun_DirectionPointsDown(t *testing.T) {
	d := DefaultSun().Direction()
	if d.Z() >= 0 {
		t.Errorf("Direction().Z() = %v, want negative", d.Z())
	}
	if l := d.Len(); l < 0.9999 || l > 1.0001 {
		t.Errorf("Direction() length = %v, want 1", l)
	}
}
