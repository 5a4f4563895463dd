package combat

import (
	"math"

	"breach_sim/internal/config"
)

type Vec3 struct{ X, Y, Z float64 }

func V3(d config.Vec3Def) Vec3 { return Vec3{d.X, d.Y, d.Z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}
func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }
func (a Vec3) Norm() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dist(b Vec3) float64  { return a.Sub(b).Len() }

// Flat drops the vertical component.
func (a Vec3) Flat() Vec3 { return Vec3{a.X, 0, a.Z} }

// Yaw is the heading of a on the ground plane, 0 facing +Z.
func (a Vec3) Yaw() float64 { return math.Atan2(a.X, a.Z) }

// RaySphere reports whether a ray from origin along dir (unit length) hits the
// sphere, and the distance along the ray to the first intersection.
func RaySphere(origin, dir, center Vec3, radius float64) (float64, bool) {
	oc := center.Sub(origin)
	t := oc.Dot(dir)
	if t < 0 {
		return 0, false
	}
	closest := origin.Add(dir.Scale(t))
	d := closest.Dist(center)
	if d > radius {
		return 0, false
	}
	return t - math.Sqrt(radius*radius-d*d), true
}
