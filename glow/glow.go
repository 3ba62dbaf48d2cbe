// Package glow is a small CPU shading pipeline: a geometry pass casts rays
// into a scene and records the visible surface point and normal for every
// pixel, and a shade pass maps a fragment shader over those records in
// parallel to produce the final colors. The two passes share nothing but
// the fragment buffer between them, so shading can be re-run with a moved
// light without touching the geometry again.
package glow

// Version is the library version.
const Version = "0.3"
