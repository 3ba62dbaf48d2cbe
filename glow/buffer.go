package glow

import "github.com/go-gl/mathgl/mgl64"

// FragmentBuffer is the output of a geometry pass: one fragment slot per
// pixel in row-major order with row 0 at the top of the image. Covered
// marks the slots a surface actually landed in. A buffer is not written
// again after the pass that built it, so one buffer can back any number
// of shade passes.
type FragmentBuffer struct {
	Width, Height int
	Fragments     []Fragment
	Covered       []bool
}

// NewFragmentBuffer returns an empty w by h fragment buffer.
func NewFragmentBuffer(w, h int) *FragmentBuffer {
	return &FragmentBuffer{
		Width:     w,
		Height:    h,
		Fragments: make([]Fragment, w*h),
		Covered:   make([]bool, w*h),
	}
}

// Set records the fragment for pixel (x, y) and marks it covered.
func (b *FragmentBuffer) Set(x, y int, f Fragment) {
	i := y*b.Width + x
	b.Fragments[i] = f
	b.Covered[i] = true
}

// At returns the fragment at (x, y) and whether it is covered.
func (b *FragmentBuffer) At(x, y int) (Fragment, bool) {
	i := y*b.Width + x
	return b.Fragments[i], b.Covered[i]
}

// CoveredCount returns how many pixels the geometry pass covered.
func (b *FragmentBuffer) CoveredCount() int {
	n := 0
	for _, c := range b.Covered {
		if c {
			n++
		}
	}
	return n
}

// ColorBuffer is the shade-pass target: one RGBA color per pixel, laid
// out like FragmentBuffer.
type ColorBuffer struct {
	Width, Height int
	Pixels        []mgl64.Vec4
}

// NewColorBuffer returns a w by h color buffer filled with background.
func NewColorBuffer(w, h int, background mgl64.Vec4) *ColorBuffer {
	pixels := make([]mgl64.Vec4, w*h)
	for i := range pixels {
		pixels[i] = background
	}
	return &ColorBuffer{Width: w, Height: h, Pixels: pixels}
}

// At returns the color at (x, y).
func (b *ColorBuffer) At(x, y int) mgl64.Vec4 {
	return b.Pixels[y*b.Width+x]
}

// Set stores the color at (x, y).
func (b *ColorBuffer) Set(x, y int, c mgl64.Vec4) {
	b.Pixels[y*b.Width+x] = c
}
