package pose

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/circular-marker-ar/internal/detection"
)

// circleCone returns the matrix Q with PᵗQP = 0 for every camera-frame point
// P on the cone through the circle with the given centre, unit normal and
// radius.
func circleCone(c, n r3.Vector, r float64) *mat.Dense {
	cn := c.Dot(n)
	k := c.Dot(c) - r*r
	cv := [3]float64{c.X, c.Y, c.Z}
	nv := [3]float64{n.X, n.Y, n.Z}

	q := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := -cn*(nv[i]*cv[j]+cv[i]*nv[j]) + k*nv[i]*nv[j]
			if i == j {
				v += cn * cn
			}
			q.Set(i, j, v)
		}
	}
	return q
}

// scene is a synthetic marker with its true pose.
type scene struct {
	outerCenter, innerCenter r3.Vector
	normal, axis             r3.Vector
	radiusOuter, radiusInner float64
	expected                 CameraPose
}

// newScene places a marker with outer centre c and plane normal n. The inner
// circle is offset by offset along the in-plane direction nearest zHint.
func newScene(n, zHint, c r3.Vector, offset float64) scene {
	y := n.Normalize()
	z := zHint.Sub(y.Mul(y.Dot(zHint))).Normalize()
	x := y.Cross(z)

	var camera [3][3]float64
	for i, col := range []r3.Vector{x, y, z} {
		camera[0][i] = col.X
		camera[1][i] = col.Y
		camera[2][i] = col.Z
	}

	return scene{
		outerCenter: c,
		innerCenter: c.Add(z.Mul(offset)),
		normal:      y,
		axis:        z,
		radiusOuter: detection.DefaultRadiusOuter,
		radiusInner: detection.DefaultRadiusInner,
		expected: CameraPose{
			R: mul3(basisSwap, camera),
			T: apply3(basisSwap, c),
		},
	}
}

// marker returns the scene's exact conics packaged as a marker.
func (s scene) marker(placement detection.Placement) detection.Marker {
	outer := mat.NewDense(3, 3, nil)
	outer.Scale(-0.37, circleCone(s.outerCenter, s.normal, s.radiusOuter))
	inner := mat.NewDense(3, 3, nil)
	inner.Scale(2.1, circleCone(s.innerCenter, s.normal, s.radiusInner))

	return detection.Marker{
		Outer:       detection.Ellipse{Conic: detection.ConicFromMatrix(outer)},
		Inner:       detection.Ellipse{Conic: detection.ConicFromMatrix(inner)},
		RadiusOuter: s.radiusOuter,
		RadiusInner: s.radiusInner,
		Placement:   placement,
	}
}

// circlePoints samples n camera-frame points on a circle.
func circlePoints(c, normal, axis r3.Vector, r float64, n int) []r3.Vector {
	x := normal.Cross(axis)
	pts := make([]r3.Vector, n)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = c.Add(x.Mul(r * math.Cos(t))).Add(axis.Mul(r * math.Sin(t)))
	}
	return pts
}

// frobenius returns ‖a − b‖_F.
func frobenius(a, b [3][3]float64) float64 {
	var sum float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d := a[i][j] - b[i][j]
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}
