// Package physics is lightweight spatial math for the warehouse simulation.
// Rotation is yaw-only: every fixture, vehicle and crate stands upright on the
// ground plane, so a single angle about +Y expresses facing and slot
// orientation.
package physics

import "math"

type Vec3 struct{ X, Y, Z float64 }

var (
	Zero = Vec3{}
	Up   = Vec3{Y: 1}
)

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Length() float64      { return math.Sqrt(v.Dot(v)) }
func (v Vec3) Abs() Vec3            { return Vec3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)} }

func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Length() }

// ApproxEqual compares component-wise within eps.
func (v Vec3) ApproxEqual(o Vec3, eps float64) bool {
	d := v.Sub(o).Abs()
	return d.X <= eps && d.Y <= eps && d.Z <= eps
}

// Pose is a rigid transform: a position plus a heading (yaw, radians) about +Y.
// Yaw 0 faces -Z.
type Pose struct {
	Pos Vec3
	Yaw float64
}

func At(pos Vec3) Pose { return Pose{Pos: pos} }

// LookVector is the unit facing direction.
func (p Pose) LookVector() Vec3 {
	return Vec3{X: -math.Sin(p.Yaw), Z: -math.Cos(p.Yaw)}
}

// Rotate applies the pose's heading to a local direction.
func (p Pose) Rotate(local Vec3) Vec3 {
	s, c := math.Sincos(p.Yaw)
	return Vec3{
		X: local.X*c + local.Z*s,
		Y: local.Y,
		Z: -local.X*s + local.Z*c,
	}
}

// Mul composes p with a pose expressed in p's local frame.
func (p Pose) Mul(local Pose) Pose {
	return Pose{Pos: p.Pos.Add(p.Rotate(local.Pos)), Yaw: p.Yaw + local.Yaw}
}

// Inverse returns the pose that undoes p.
func (p Pose) Inverse() Pose {
	inv := Pose{Yaw: -p.Yaw}
	inv.Pos = inv.Rotate(p.Pos.Scale(-1))
	return inv
}

// ToLocal expresses a world pose in p's frame.
func (p Pose) ToLocal(world Pose) Pose {
	return p.Inverse().Mul(world)
}

// Translate offsets the position in world space, keeping the heading.
func (p Pose) Translate(d Vec3) Pose {
	return Pose{Pos: p.Pos.Add(d), Yaw: p.Yaw}
}

// Volume is an oriented box: a pose at its centre plus full extents.
type Volume struct {
	Pose Pose
	Size Vec3
}

// AABB is an axis-aligned box.
type AABB struct{ Min, Max Vec3 }

// Bounds returns the axis-aligned box enclosing v.
func (v Volume) Bounds() AABB {
	s, c := math.Sincos(v.Pose.Yaw)
	s, c = math.Abs(s), math.Abs(c)
	half := v.Size.Scale(0.5)
	ext := Vec3{
		X: half.X*c + half.Z*s,
		Y: half.Y,
		Z: half.X*s + half.Z*c,
	}
	return AABB{Min: v.Pose.Pos.Sub(ext), Max: v.Pose.Pos.Add(ext)}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Overlaps reports whether the two volumes' bounds intersect. Bounds are
// conservative for rotated boxes, which is what the contact and probe queries
// want: a near miss on a diagonal counts as a touch.
func Overlaps(a, b Volume) bool {
	return a.Bounds().Intersects(b.Bounds())
}
