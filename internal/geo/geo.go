// Package geo holds the 4x4 transform helpers used by the bone evaluator.
// Matrices are column-major mgl32 values; column 3 is the translation.
package geo

import "github.com/go-gl/mathgl/mgl32"

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-6

var (
	AxisX = mgl32.Vec3{1, 0, 0}
	AxisY = mgl32.Vec3{0, 1, 0}
	AxisZ = mgl32.Vec3{0, 0, 1}
)

// Translate returns m * T(v).
func Translate(m mgl32.Mat4, v mgl32.Vec3) mgl32.Mat4 {
	return m.Mul4(mgl32.Translate3D(v.X(), v.Y(), v.Z()))
}

// Scale returns m * S(v).
func Scale(m mgl32.Mat4, v mgl32.Vec3) mgl32.Mat4 {
	return m.Mul4(mgl32.Scale3D(v.X(), v.Y(), v.Z()))
}

// ScaleUniform returns m * S(s, s, s).
func ScaleUniform(m mgl32.Mat4, s float32) mgl32.Mat4 {
	return m.Mul4(mgl32.Scale3D(s, s, s))
}

// MulPoint returns m * (p, 1).
func MulPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec4 {
	return m.Mul4x1(p.Vec4(1))
}

// MulDir returns m * (d, 0), the linear part of m applied to d.
func MulDir(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec4 {
	return m.Mul4x1(d.Vec4(0))
}

// TransformPoint applies m to the point p.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return MulPoint(m, p).Vec3()
}

// pivotTranslation is m * (p, 1) - b * (p, 0) with w forced to 1. It keeps
// p where m puts it when b replaces the linear part of m.
func pivotTranslation(m, b mgl32.Mat4, p mgl32.Vec3) mgl32.Vec4 {
	t := MulPoint(m, p).Sub(MulDir(b, p))
	t[3] = 1
	return t
}

// RebasePivot recomputes the translation column of parent about pivot.
func RebasePivot(parent mgl32.Mat4, pivot mgl32.Vec3) mgl32.Mat4 {
	parent.SetCol(3, pivotTranslation(parent, parent, pivot))
	return parent
}

// BasisLength returns the lengths of the three basis columns.
func BasisLength(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
}

// UniformScaleTo returns the factor that brings the length of m's first
// basis column to length. A degenerate column yields 1.
func UniformScaleTo(m mgl32.Mat4, length float32) float32 {
	l := m.Col(0).Vec3().Len()
	if l < Epsilon {
		return 1
	}
	return length / l
}

func normalize(v mgl32.Vec3) (mgl32.Vec3, bool) {
	l := v.Len()
	if l < Epsilon {
		return mgl32.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// SphericalBasis returns an orthonormal basis whose X axis is view and
// whose Z axis is as close to up as possible.
func SphericalBasis(view, up mgl32.Vec3) [3]mgl32.Vec3 {
	x, ok := normalize(view)
	if !ok {
		x = AxisX
	}
	y, ok := normalize(up.Cross(x))
	if !ok {
		// up is parallel to view.
		helper := AxisZ
		if d := x.Dot(AxisZ); d > 0.9 || d < -0.9 {
			helper = AxisY
		}
		y, _ = normalize(helper.Cross(x))
	}
	return [3]mgl32.Vec3{x, y, x.Cross(y)}
}

// CylindricalBasisZ keeps the direction of m's Z axis and turns X toward
// view within the plane perpendicular to it.
func CylindricalBasisZ(m mgl32.Mat4, view mgl32.Vec3) [3]mgl32.Vec3 {
	z, ok := normalize(m.Col(2).Vec3())
	if !ok {
		z = AxisZ
	}
	x, ok := normalize(view.Sub(z.Mul(view.Dot(z))))
	if !ok {
		x, ok = normalize(m.Col(0).Vec3())
		if !ok {
			x = AxisX
		}
	}
	return [3]mgl32.Vec3{x, z.Cross(x), z}
}

// Billboard replaces the basis of m with basis, keeping each column's
// original length, and moves the translation so pivot stays fixed.
func Billboard(m mgl32.Mat4, basis [3]mgl32.Vec3, pivot mgl32.Vec3) mgl32.Mat4 {
	lens := BasisLength(m)
	b := mgl32.Mat4FromCols(
		basis[0].Mul(lens[0]).Vec4(0),
		basis[1].Mul(lens[1]).Vec4(0),
		basis[2].Mul(lens[2]).Vec4(0),
		mgl32.Vec4{0, 0, 0, 1},
	)
	b.SetCol(3, pivotTranslation(m, b, pivot))
	return b
}
