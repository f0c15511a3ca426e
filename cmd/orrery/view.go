package main

import (
	"math"

	"github.com/lixenwraith/orrery/camera"
	"github.com/lixenwraith/orrery/vmath"
)

// Projection
const (
	hudRows    = 2   // Status line on top, key help at the bottom
	focalLen   = 1.0 // Screen heights per unit of depth, about 53 degrees vertical
	nearPlane  = 0.1
	cellAspect = 2.0 // Terminal cells are twice as tall as wide
)

// Viewer motion
const (
	yawStep       = 0.08
	pitchStep     = 0.06
	zoomStep      = 1.15
	maxPitch      = 1.45
	minViewerGap  = 2.0
	dragYawRate   = 0.02 // rad per column
	dragPitchRate = 0.04 // rad per row
)

// viewBasis is a camera frame: right, up and forward unit vectors at origin
type viewBasis struct {
	origin  vmath.Vec3F
	right   vmath.Vec3F
	up      vmath.Vec3F
	forward vmath.Vec3F
}

// newViewBasis builds the frame for p, false if position and target coincide
func newViewBasis(p camera.Pose) (viewBasis, bool) {
	dir := vmath.V3FSub(p.Target, p.Position)
	if vmath.V3FMagSq(dir) < 1e-12 {
		return viewBasis{}, false
	}
	forward := vmath.V3FNormalize(dir)

	worldUp := vmath.Vec3F{Y: 1}
	right := vmath.V3FCross(forward, worldUp)
	if vmath.V3FMagSq(right) < 1e-9 {
		// Looking straight up or down
		right = vmath.V3FCross(forward, vmath.Vec3F{Z: -1})
	}
	right = vmath.V3FNormalize(right)

	return viewBasis{
		origin:  p.Position,
		right:   right,
		up:      vmath.V3FCross(right, forward),
		forward: forward,
	}, true
}

// projected is a sphere in screen cells
type projected struct {
	cx, cy float64
	radius float64 // In rows, columns are radius*cellAspect
	depth  float64
	index  int
}

// project maps a sphere of the given size at p onto a w x h screen, false when behind the near plane
func (b viewBasis) project(p vmath.Vec3F, size float64, index, w, h int) (projected, bool) {
	d := vmath.V3FSub(p, b.origin)
	z := vmath.V3FDot(d, b.forward)
	if z < nearPlane {
		return projected{}, false
	}
	x := vmath.V3FDot(d, b.right)
	y := vmath.V3FDot(d, b.up)

	viewH := float64(h - hudRows)
	scale := viewH * focalLen
	invZ := 1 / z

	return projected{
		cx:     float64(w)/2 + x*invZ*scale*cellAspect,
		cy:     1 + viewH/2 - y*invZ*scale,
		radius: size * invZ * scale,
		depth:  z,
		index:  index,
	}, true
}

// onScreen reports whether any part of the sphere can land inside the view rows
func (pr projected) onScreen(w, h int) bool {
	rx := pr.radius * cellAspect
	return pr.cx+rx >= 0 && pr.cx-rx < float64(w) &&
		pr.cy+pr.radius >= 1 && pr.cy-pr.radius < float64(h-1)
}

// orbitPose swings the camera around its look-at point
// Yaw turns about the vertical axis, pitch is clamped short of the poles, zoom scales the distance
func orbitPose(p camera.Pose, dYaw, dPitch, zoom float64) camera.Pose {
	offset := vmath.V3FSub(p.Position, p.Target)
	r := vmath.V3FMag(offset)
	if r < minViewerGap {
		r = minViewerGap
	}

	yaw := math.Atan2(offset.X, offset.Z)
	pitch := math.Asin(vmath.ClampF(offset.Y/r, -1, 1))

	yaw = vmath.WrapAngle(yaw + dYaw)
	pitch = vmath.ClampF(pitch+dPitch, -maxPitch, maxPitch)
	if zoom > 0 {
		r = math.Max(r*zoom, minViewerGap)
	}

	cp := math.Cos(pitch)
	return camera.Pose{
		Position: vmath.V3FAdd(p.Target, vmath.Vec3F{
			X: r * cp * math.Sin(yaw),
			Y: r * math.Sin(pitch),
			Z: r * cp * math.Cos(yaw),
		}),
		Target: p.Target,
	}
}
