package glow

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AmbientStrength scales the ambient contribution. Fixed, like the light
// and surface colors below: these are the compiled-in uniforms of the
// pipeline and never vary between draws.
const AmbientStrength = 0.1

var (
	// LightColor is the color of the single point light.
	LightColor = mgl64.Vec3{1, 1, 1}
	// Albedo is the base color of every shaded surface.
	Albedo = mgl64.Vec3{0.5, 0.8, 1.0}
)

// Fragment holds the interpolated values the geometry pass hands to the
// shader for one covered pixel: the surface point in world space and its
// normal. The normal need not be unit length.
type Fragment struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
}

// Shader shades one fragment at a time.
type Shader interface {
	Fragment(Fragment) mgl64.Vec4
}

// PhongShader implements ambient plus Lambertian diffuse lighting from a
// single point light. LightPosition is the only uniform; it is read-only
// while a draw is in flight, so fragments may be shaded in any order on
// any number of goroutines.
type PhongShader struct {
	LightPosition mgl64.Vec3
}

// NewPhongShader f
func NewPhongShader(lightPosition mgl64.Vec3) *PhongShader {
	return &PhongShader{LightPosition: lightPosition}
}

// Fragment f
func (shader *PhongShader) Fragment(v Fragment) mgl64.Vec4 {
	ambient := LightColor.Mul(AmbientStrength)

	// Normalize divides by the length with no zero guard. A zero normal,
	// or a fragment sitting exactly on the light, turns into NaN channels
	// that flow through to the output; alpha stays 1 either way.
	n := v.Normal.Normalize()
	lightDir := shader.LightPosition.Sub(v.Position).Normalize()

	diff := math.Max(n.Dot(lightDir), 0)
	diffuse := LightColor.Mul(diff)

	light := ambient.Add(diffuse)
	return mgl64.Vec4{light[0] * Albedo[0], light[1] * Albedo[1], light[2] * Albedo[2], 1}
}
