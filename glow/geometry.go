package glow

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Hit describes a ray's intersection with a surface: the distance along
// the ray, the point in world space and the surface normal there.
type Hit struct {
	T        float64
	Position mgl64.Vec3
	Normal   mgl64.Vec3
}

// Geometry is anything the geometry pass can cast rays against. Intersect
// reports the nearest hit with t in [tMin, tMax]. dir need not be unit
// length; t is measured in multiples of it.
type Geometry interface {
	Intersect(origin, dir mgl64.Vec3, tMin, tMax float64) (Hit, bool)
}

// Cube is the unit cube: axis aligned, centered on the origin, faces at
// ±0.5. Place and spin it with Transformed.
type Cube struct{}

// Intersect runs the slab test against the three axis pairs.
func (Cube) Intersect(origin, dir mgl64.Vec3, tMin, tMax float64) (Hit, bool) {
	const half = 0.5

	t0, t1 := tMin, tMax
	axis0, axis1 := -1, -1
	for i := 0; i < 3; i++ {
		invD := 1 / dir[i]
		near := (-half - origin[i]) * invD
		far := (half - origin[i]) * invD
		if invD < 0 {
			near, far = far, near
		}
		if near > t0 {
			t0 = near
			axis0 = i
		}
		if far < t1 {
			t1 = far
			axis1 = i
		}
		if t1 < t0 {
			return Hit{}, false
		}
	}

	// Entering from outside hits the slab that set t0; a ray starting
	// inside the cube exits through the slab that set t1.
	t, axis, facing := t0, axis0, -1.0
	if axis0 < 0 {
		if axis1 < 0 {
			return Hit{}, false
		}
		t, axis, facing = t1, axis1, 1.0
	}

	var normal mgl64.Vec3
	if dir[axis] > 0 {
		normal[axis] = facing
	} else {
		normal[axis] = -facing
	}
	return Hit{T: t, Position: origin.Add(dir.Mul(t)), Normal: normal}, true
}

// Sphere with a world-space center and radius.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// Intersect solves the ray-sphere quadratic, preferring the nearer root.
func (s Sphere) Intersect(origin, dir mgl64.Vec3, tMin, tMax float64) (Hit, bool) {
	oc := origin.Sub(s.Center)
	a := dir.Dot(dir)
	halfB := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return Hit{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return Hit{}, false
		}
	}

	p := origin.Add(dir.Mul(root))
	return Hit{T: root, Position: p, Normal: p.Sub(s.Center).Mul(1 / s.Radius)}, true
}

// Plane is an infinite plane through Point with the given normal. The
// normal is used as stored; the far side of the plane is lit by the
// ambient term only.
type Plane struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// Intersect f
func (p Plane) Intersect(origin, dir mgl64.Vec3, tMin, tMax float64) (Hit, bool) {
	denominator := dir.Dot(p.Normal)
	if math.Abs(denominator) < 1e-8 {
		return Hit{}, false
	}

	t := p.Point.Sub(origin).Dot(p.Normal) / denominator
	if t < tMin || t > tMax {
		return Hit{}, false
	}
	return Hit{T: t, Position: origin.Add(dir.Mul(t)), Normal: p.Normal}, true
}

// Transformed places a Geometry in the world under a model matrix. Rays
// are pulled into model space through the cached inverse and hit normals
// pushed back out through the inverse transpose. Normals are handed on
// unnormalized; the shader normalizes.
type Transformed struct {
	Geometry Geometry
	matrix   mgl64.Mat4
	inverse  mgl64.Mat4
	normal   mgl64.Mat4
}

// NewTransformed wraps g with the model matrix m.
func NewTransformed(g Geometry, m mgl64.Mat4) *Transformed {
	inverse := m.Inv()
	return &Transformed{
		Geometry: g,
		matrix:   m,
		inverse:  inverse,
		normal:   inverse.Transpose(),
	}
}

// Intersect casts the ray in model space. t carries over unchanged because
// the direction is transformed with w=0 and left unnormalized.
func (tr *Transformed) Intersect(origin, dir mgl64.Vec3, tMin, tMax float64) (Hit, bool) {
	localOrigin := tr.inverse.Mul4x1(origin.Vec4(1)).Vec3()
	localDir := tr.inverse.Mul4x1(dir.Vec4(0)).Vec3()

	hit, ok := tr.Geometry.Intersect(localOrigin, localDir, tMin, tMax)
	if !ok {
		return Hit{}, false
	}

	hit.Position = tr.matrix.Mul4x1(hit.Position.Vec4(1)).Vec3()
	hit.Normal = tr.normal.Mul4x1(hit.Normal.Vec4(0)).Vec3()
	return hit, true
}
