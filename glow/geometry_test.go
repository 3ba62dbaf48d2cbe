package glow

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCubeIntersect(t *testing.T) {
	tests := []struct {
		name       string
		origin     mgl64.Vec3
		dir        mgl64.Vec3
		wantHit    bool
		wantT      float64
		wantNormal mgl64.Vec3
	}{
		{
			name:       "head on front face",
			origin:     mgl64.Vec3{0, 0, 3},
			dir:        mgl64.Vec3{0, 0, -1},
			wantHit:    true,
			wantT:      2.5,
			wantNormal: mgl64.Vec3{0, 0, 1},
		},
		{
			name:       "head on right face",
			origin:     mgl64.Vec3{4, 0, 0},
			dir:        mgl64.Vec3{-1, 0, 0},
			wantHit:    true,
			wantT:      3.5,
			wantNormal: mgl64.Vec3{1, 0, 0},
		},
		{
			name:       "from inside exits back face",
			origin:     mgl64.Vec3{0, 0, 0},
			dir:        mgl64.Vec3{0, 0, -1},
			wantHit:    true,
			wantT:      0.5,
			wantNormal: mgl64.Vec3{0, 0, -1},
		},
		{
			name:    "parallel miss above",
			origin:  mgl64.Vec3{0, 2, 3},
			dir:     mgl64.Vec3{0, 0, -1},
			wantHit: false,
		},
		{
			name:    "pointing away",
			origin:  mgl64.Vec3{0, 0, 3},
			dir:     mgl64.Vec3{0, 0, 1},
			wantHit: false,
		},
		{
			name:    "diagonal miss past corner",
			origin:  mgl64.Vec3{2, 2, 2},
			dir:     mgl64.Vec3{-1, 0, 0},
			wantHit: false,
		},
		{
			name:       "diagonal hit",
			origin:     mgl64.Vec3{2, 0.25, 0},
			dir:        mgl64.Vec3{-1, 0, 0},
			wantHit:    true,
			wantT:      1.5,
			wantNormal: mgl64.Vec3{1, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := Cube{}.Intersect(tt.origin, tt.dir, 0.001, 100)
			if ok != tt.wantHit {
				t.Fatalf("Intersect() hit = %v, want %v", ok, tt.wantHit)
			}
			if !tt.wantHit {
				return
			}
			if math.Abs(hit.T-tt.wantT) > tolerance {
				t.Errorf("T = %v, want %v", hit.T, tt.wantT)
			}
			if hit.Normal.Sub(tt.wantNormal).Len() > tolerance {
				t.Errorf("Normal = %v, want %v", hit.Normal, tt.wantNormal)
			}
			wantPos := tt.origin.Add(tt.dir.Mul(tt.wantT))
			if hit.Position.Sub(wantPos).Len() > tolerance {
				t.Errorf("Position = %v, want %v", hit.Position, wantPos)
			}
		})
	}
}

func TestCubeRespectsRange(t *testing.T) {
	origin := mgl64.Vec3{0, 0, 3}
	dir := mgl64.Vec3{0, 0, -1}

	if _, ok := (Cube{}).Intersect(origin, dir, 0.001, 2); ok {
		t.Error("hit beyond tMax, want miss")
	}
	if hit, ok := (Cube{}).Intersect(origin, dir, 2.7, 100); !ok || math.Abs(hit.T-3.5) > tolerance {
		t.Errorf("with tMin past the front face got (%v, %v), want exit face at t=3.5", hit.T, ok)
	}
}

func TestSphereIntersect(t *testing.T) {
	s := Sphere{Center: mgl64.Vec3{0, 0, 0}, Radius: 1}

	tests := []struct {
		name       string
		origin     mgl64.Vec3
		dir        mgl64.Vec3
		wantHit    bool
		wantT      float64
		wantNormal mgl64.Vec3
	}{
		{
			name:       "head on",
			origin:     mgl64.Vec3{0, 0, 3},
			dir:        mgl64.Vec3{0, 0, -1},
			wantHit:    true,
			wantT:      2,
			wantNormal: mgl64.Vec3{0, 0, 1},
		},
		{
			name:       "from inside picks far root",
			origin:     mgl64.Vec3{0, 0, 0},
			dir:        mgl64.Vec3{0, 0, -1},
			wantHit:    true,
			wantT:      1,
			wantNormal: mgl64.Vec3{0, 0, -1},
		},
		{
			name:    "miss",
			origin:  mgl64.Vec3{0, 2, 3},
			dir:     mgl64.Vec3{0, 0, -1},
			wantHit: false,
		},
		{
			name:    "behind origin",
			origin:  mgl64.Vec3{0, 0, 3},
			dir:     mgl64.Vec3{0, 0, 1},
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := s.Intersect(tt.origin, tt.dir, 0.001, 100)
			if ok != tt.wantHit {
				t.Fatalf("Intersect() hit = %v, want %v", ok, tt.wantHit)
			}
			if !tt.wantHit {
				return
			}
			if math.Abs(hit.T-tt.wantT) > tolerance {
				t.Errorf("T = %v, want %v", hit.T, tt.wantT)
			}
			if hit.Normal.Sub(tt.wantNormal).Len() > tolerance {
				t.Errorf("Normal = %v, want %v", hit.Normal, tt.wantNormal)
			}
		})
	}
}

func TestSphereOffCenter(t *testing.T) {
	s := Sphere{Center: mgl64.Vec3{5, 1, 0}, Radius: 2}
	hit, ok := s.Intersect(mgl64.Vec3{5, 1, 10}, mgl64.Vec3{0, 0, -1}, 0.001, 100)
	if !ok {
		t.Fatal("want hit")
	}
	if math.Abs(hit.T-8) > tolerance {
		t.Errorf("T = %v, want 8", hit.T)
	}
	if want := (mgl64.Vec3{5, 1, 2}); hit.Position.Sub(want).Len() > tolerance {
		t.Errorf("Position = %v, want %v", hit.Position, want)
	}
}

func TestPlaneIntersect(t *testing.T) {
	ground := Plane{Point: mgl64.Vec3{0, 0, 0}, Normal: mgl64.Vec3{0, 1, 0}}

	hit, ok := ground.Intersect(mgl64.Vec3{1, 2, 1}, mgl64.Vec3{0, -1, 0}, 0.001, 100)
	if !ok {
		t.Fatal("want hit")
	}
	if math.Abs(hit.T-2) > tolerance {
		t.Errorf("T = %v, want 2", hit.T)
	}
	if want := (mgl64.Vec3{1, 0, 1}); hit.Position.Sub(want).Len() > tolerance {
		t.Errorf("Position = %v, want %v", hit.Position, want)
	}
	if want := (mgl64.Vec3{0, 1, 0}); hit.Normal != want {
		t.Errorf("Normal = %v, want %v", hit.Normal, want)
	}

	if _, ok := ground.Intersect(mgl64.Vec3{0, 2, 0}, mgl64.Vec3{1, 0, 0}, 0.001, 100); ok {
		t.Error("parallel ray reported a hit")
	}
	if _, ok := ground.Intersect(mgl64.Vec3{0, 2, 0}, mgl64.Vec3{0, 1, 0}, 0.001, 100); ok {
		t.Error("ray leaving the plane reported a hit")
	}
}

func TestTransformedTranslation(t *testing.T) {
	cube := NewTransformed(Cube{}, mgl64.Translate3D(2, 0, 0))

	hit, ok := cube.Intersect(mgl64.Vec3{2, 0, 3}, mgl64.Vec3{0, 0, -1}, 0.001, 100)
	if !ok {
		t.Fatal("want hit")
	}
	if math.Abs(hit.T-2.5) > tolerance {
		t.Errorf("T = %v, want 2.5", hit.T)
	}
	if want := (mgl64.Vec3{2, 0, 0.5}); hit.Position.Sub(want).Len() > tolerance {
		t.Errorf("Position = %v, want %v", hit.Position, want)
	}
	if want := (mgl64.Vec3{0, 0, 1}); hit.Normal.Sub(want).Len() > tolerance {
		t.Errorf("Normal = %v, want %v", hit.Normal, want)
	}

	if _, ok := cube.Intersect(mgl64.Vec3{0, 0, 3}, mgl64.Vec3{0, 0, -1}, 0.001, 100); ok {
		t.Error("ray through the cube's old position reported a hit")
	}
}

func TestTransformedScaleKeepsWorldT(t *testing.T) {
	// Double-size cube: faces land at ±1. The reported t must be measured
	// in world units even though the intersection ran in model space.
	cube := NewTransformed(Cube{}, mgl64.Scale3D(2, 2, 2))

	hit, ok := cube.Intersect(mgl64.Vec3{0, 0, 3}, mgl64.Vec3{0, 0, -1}, 0.001, 100)
	if !ok {
		t.Fatal("want hit")
	}
	if math.Abs(hit.T-2) > tolerance {
		t.Errorf("T = %v, want 2", hit.T)
	}
	if want := (mgl64.Vec3{0, 0, 1}); hit.Position.Sub(want).Len() > tolerance {
		t.Errorf("Position = %v, want %v", hit.Position, want)
	}
	// The inverse transpose halves the normal; direction is what matters,
	// the shader renormalizes.
	if want := (mgl64.Vec3{0, 0, 1}); hit.Normal.Normalize().Sub(want).Len() > tolerance {
		t.Errorf("Normal direction = %v, want %v", hit.Normal.Normalize(), want)
	}
}

func TestTransformedRotationTurnsNormals(t *testing.T) {
	// Quarter turn about Y maps the cube onto itself but carries the +Z
	// face to +X. A ray from +X must now see that face's normal at +X.
	cube := NewTransformed(Cube{}, mgl64.HomogRotate3D(math.Pi/2, mgl64.Vec3{0, 1, 0}))

	hit, ok := cube.Intersect(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{-1, 0, 0}, 0.001, 100)
	if !ok {
		t.Fatal("want hit")
	}
	if math.Abs(hit.T-2.5) > tolerance {
		t.Errorf("T = %v, want 2.5", hit.T)
	}
	if want := (mgl64.Vec3{1, 0, 0}); hit.Normal.Normalize().Sub(want).Len() > tolerance {
		t.Errorf("Normal = %v, want %v", hit.Normal.Normalize(), want)
	}
}
