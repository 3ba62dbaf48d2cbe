package glow

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Zoom factor bounds.
const (
	MinZoom = 0.1
	MaxZoom = 5.0
)

// Camera is an orbiting pinhole camera. The eye circles the target under
// Orbit; Zoom scales the eye's distance from the target. FOV is the
// vertical field of view in degrees; Near and Far bound the visible range
// along each ray.
type Camera struct {
	Eye    mgl64.Vec3
	Target mgl64.Vec3
	Up     mgl64.Vec3
	FOV    float64
	Near   float64
	Far    float64

	zoom float64
}

// NewCamera returns the default view: eye at (2, 2, 2) looking at the
// origin with a 45 degree field of view.
func NewCamera() *Camera {
	return &Camera{
		Eye:    mgl64.Vec3{2, 2, 2},
		Target: mgl64.Vec3{0, 0, 0},
		Up:     mgl64.Vec3{0, 1, 0},
		FOV:    45,
		Near:   0.1,
		Far:    100,
		zoom:   1,
	}
}

// Orbit rotates the eye around the target: pitch radians about the view
// right axis, then yaw radians about the up axis.
func (c *Camera) Orbit(yaw, pitch float64) {
	right := c.Eye.Sub(c.Target).Normalize().Cross(c.Up).Normalize()

	offset := c.Eye.Sub(c.Target)
	rotated := mgl64.HomogRotate3D(pitch, right).Mul4x1(offset.Vec4(0))
	c.Eye = rotated.Vec3().Add(c.Target)

	offset = c.Eye.Sub(c.Target)
	rotated = mgl64.HomogRotate3D(yaw, c.Up).Mul4x1(offset.Vec4(0))
	c.Eye = rotated.Vec3().Add(c.Target)
}

// Zoom applies one scroll step. Positive steps zoom in; the accumulated
// factor stays within [MinZoom, MaxZoom].
func (c *Camera) Zoom(step float64) {
	c.SetZoom(c.zoom - step*0.1)
}

// SetZoom sets the zoom factor directly, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(factor float64) {
	c.zoom = mgl64.Clamp(factor, MinZoom, MaxZoom)
}

// viewEye is the effective eye position with zoom applied.
func (c *Camera) viewEye() mgl64.Vec3 {
	return c.Target.Add(c.Eye.Sub(c.Target).Mul(c.zoom))
}

// rayBasis caches the view-plane frame for one image size so per-pixel ray
// generation is a couple of multiply-adds.
type rayBasis struct {
	origin     mgl64.Vec3
	lowerLeft  mgl64.Vec3
	horizontal mgl64.Vec3
	vertical   mgl64.Vec3
	width      float64
	height     float64
}

// basis precomputes the ray frame for a w by h image.
func (c *Camera) basis(w, h int) rayBasis {
	eye := c.viewEye()
	forward := c.Target.Sub(eye).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward)

	halfH := math.Tan(mgl64.DegToRad(c.FOV) / 2)
	halfW := halfH * float64(w) / float64(h)

	horizontal := right.Mul(2 * halfW)
	vertical := up.Mul(2 * halfH)
	lowerLeft := eye.Add(forward).Sub(horizontal.Mul(0.5)).Sub(vertical.Mul(0.5))

	return rayBasis{
		origin:     eye,
		lowerLeft:  lowerLeft,
		horizontal: horizontal,
		vertical:   vertical,
		width:      float64(w),
		height:     float64(h),
	}
}

// ray returns the eye ray through the center of pixel (x, y). Row 0 is the
// top row of the image.
func (b rayBasis) ray(x, y int) (origin, dir mgl64.Vec3) {
	s := (float64(x) + 0.5) / b.width
	t := 1 - (float64(y)+0.5)/b.height

	dir = b.lowerLeft.
		Add(b.horizontal.Mul(s)).
		Add(b.vertical.Mul(t)).
		Sub(b.origin).
		Normalize()
	return b.origin, dir
}
