package glow

import (
	"image"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/nfnt/resize"
)

// Scene holds the flattened geometry to draw, the light position shared
// read-only by every fragment of the draw, and the background color that
// shows through uncovered pixels.
type Scene struct {
	Geometries    []Geometry
	LightPosition mgl64.Vec3
	Background    mgl64.Vec4
}

// SceneNode represents a node in the hierarchical scene graph. Geometry
// can be nil for empty joints.
type SceneNode struct {
	Name        string
	Geometry    Geometry
	LocalMatrix mgl64.Mat4
	Children    []*SceneNode
}

// NewSceneNode returns a node with no children.
func NewSceneNode(name string, g Geometry, matrix mgl64.Mat4) *SceneNode {
	return &SceneNode{
		Name:        name,
		Geometry:    g,
		LocalMatrix: matrix,
		Children:    make([]*SceneNode, 0),
	}
}

// AddChild appends a child node.
func (n *SceneNode) AddChild(child *SceneNode) {
	n.Children = append(n.Children, child)
}

// FindNodeByName recursively searches the tree for a node by its name.
func (n *SceneNode) FindNodeByName(name string) *SceneNode {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindNodeByName(name); found != nil {
			return found
		}
	}
	return nil
}

// Flatten walks the tree accumulating world matrices and appends each
// node's geometry, placed under its world matrix, to geometries.
func (n *SceneNode) Flatten(parentMatrix mgl64.Mat4, geometries *[]Geometry) {
	worldMatrix := parentMatrix.Mul4(n.LocalMatrix)

	if n.Geometry != nil {
		*geometries = append(*geometries, NewTransformed(n.Geometry, worldMatrix))
	}

	for _, child := range n.Children {
		child.Flatten(worldMatrix, geometries)
	}
}

// Scene constants shared by the presets.
var (
	defaultLight      = mgl64.Vec3{1.2, 1.0, 2.0}
	defaultBackground = mgl64.Vec4{0.1, 0.1, 0.3, 1.0}
	spinAxis          = mgl64.Vec3{0.5, 1.0, 0.0}.Normalize()
)

// CubeScene is the standard view: the unit cube spun angle radians about
// the tilted axis (0.5, 1, 0), over a dark blue background.
func CubeScene(angle float64) *Scene {
	root := NewSceneNode("Root", nil, mgl64.Ident4())
	root.AddChild(NewSceneNode("Cube", Cube{}, mgl64.HomogRotate3D(angle, spinAxis)))

	var geometries []Geometry
	root.Flatten(mgl64.Ident4(), &geometries)

	return &Scene{
		Geometries:    geometries,
		LightPosition: defaultLight,
		Background:    defaultBackground,
	}
}

// SphereScene is a sphere resting on a ground plane.
func SphereScene() *Scene {
	return &Scene{
		Geometries: []Geometry{
			Sphere{Center: mgl64.Vec3{0, 0.5, 0}, Radius: 0.5},
			Plane{Point: mgl64.Vec3{0, 0, 0}, Normal: mgl64.Vec3{0, 1, 0}},
		},
		LightPosition: defaultLight,
		Background:    defaultBackground,
	}
}

// SceneNames lists the preset scenes.
func SceneNames() []string {
	return []string{"cube", "sphere"}
}

// SceneByName returns the named preset. angle spins scenes with an
// animated model and is ignored by the rest.
func SceneByName(name string, angle float64) (*Scene, bool) {
	switch name {
	case "cube":
		return CubeScene(angle), true
	case "sphere":
		return SphereScene(), true
	}
	return nil, false
}

// GeometryPass casts one camera ray per pixel and records the nearest
// surface point and normal for each, leaving missed pixels uncovered.
// Rows are traced in parallel the same way ShadePass shades them.
func GeometryPass(scene *Scene, camera *Camera, w, h, workers int) *FragmentBuffer {
	buf := NewFragmentBuffer(w, h)
	basis := camera.basis(w, h)

	forEachRow(h, workers, func(y int) {
		for x := 0; x < w; x++ {
			origin, dir := basis.ray(x, y)

			nearest := Hit{T: camera.Far}
			found := false
			for _, g := range scene.Geometries {
				if hit, ok := g.Intersect(origin, dir, camera.Near, nearest.T); ok {
					nearest = hit
					found = true
				}
			}
			if found {
				buf.Set(x, y, Fragment{Position: nearest.Position, Normal: nearest.Normal})
			}
		}
	})
	return buf
}

// RenderFragments shades an existing geometry pass with the scene's light
// and converts it to the final image, downsampling from the buffer's
// resolution to size when they differ. The fragment buffer is only read,
// so a cached pass can be shaded again with a different light.
func RenderFragments(frags *FragmentBuffer, scene *Scene, size, workers int) image.Image {
	colors := NewColorBuffer(frags.Width, frags.Height, scene.Background)
	ShadePass(colors, frags, NewPhongShader(scene.LightPosition), workers)

	var img image.Image = colors.Image()
	if frags.Width != size || frags.Height != size {
		img = resize.Resize(uint(size), uint(size), img, resize.Bilinear)
	}
	return img
}

// RenderScene runs the full pipeline at size*scale pixels, shading with
// the scene's light, then downsamples to size for the supersampled final
// image.
func RenderScene(scene *Scene, camera *Camera, size, scale, workers int) image.Image {
	if scale < 1 {
		scale = 1
	}
	dim := size * scale
	frags := GeometryPass(scene, camera, dim, dim, workers)
	return RenderFragments(frags, scene, size, workers)
}

// RenderSceneToWriter renders the scene and encodes the image to w in the
// given format ("png" or "jpeg").
func RenderSceneToWriter(w io.Writer, scene *Scene, camera *Camera, size, scale, workers int, format string) error {
	return Encode(w, RenderScene(scene, camera, size, scale, workers), format)
}
