// business/bandit/math.go
package bandit

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Pivots below this magnitude are treated as zero during inversion.
const pivotEpsilon = 1e-10

// identity returns the n×n identity matrix.
func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := range n {
		m.Set(i, i, 1)
	}
	return m
}

func dot(a, b mat.Vector) float64 {
	return mat.Dot(a, b)
}

// x x^T
func outerProduct(x mat.Vector) *mat.Dense {
	n := x.Len()
	m := mat.NewDense(n, n, nil)
	m.Outer(1, x, x)
	return m
}

// A := A + B
func addMatrix(a *mat.Dense, b mat.Matrix) {
	a.Add(a, b)
}

// v := v + alpha x
func addVector(v *mat.VecDense, alpha float64, x mat.Vector) {
	v.AddScaledVec(v, alpha, x)
}

// y = A * x
func multiplyMatrixVector(a mat.Matrix, x mat.Vector) *mat.VecDense {
	r, _ := a.Dims()
	y := mat.NewVecDense(r, nil)
	y.MulVec(a, x)
	return y
}

// invert runs Gauss-Jordan elimination with partial pivoting on [A | I].
//
// A column whose best remaining pivot is below pivotEpsilon is left as is
// instead of dividing by a near-zero value. For a singular input the result
// is therefore only an approximation, not a pseudo-inverse. The matrices fed
// here are identity plus a sum of outer products, so in practice every pivot
// is at least 1.
func invert(a mat.Matrix) *mat.Dense {
	n, _ := a.Dims()

	// Build augmented [A | I]
	aug := mat.NewDense(n, 2*n, nil)
	for i := range n {
		row := aug.RawRowView(i)
		for j := range n {
			row[j] = a.At(i, j)
		}
		row[n+i] = 1
	}

	for col := range n {
		pivotRow := col
		best := math.Abs(aug.At(col, col))
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug.At(r, col)); v > best {
				best = v
				pivotRow = r
			}
		}
		if best < pivotEpsilon {
			continue
		}
		if pivotRow != col {
			swapRows(aug, col, pivotRow)
		}

		// Normalize pivot row
		pivot := aug.RawRowView(col)
		floats.Scale(1/pivot[col], pivot)

		// Eliminate other rows
		for r := range n {
			if r == col {
				continue
			}
			row := aug.RawRowView(r)
			if factor := row[col]; factor != 0 {
				floats.AddScaled(row, -factor, pivot)
			}
		}
	}

	return mat.DenseCopyOf(aug.Slice(0, n, n, 2*n))
}

func swapRows(m *mat.Dense, i, j int) {
	ri := m.RawRowView(i)
	rj := m.RawRowView(j)
	tmp := make([]float64, len(ri))
	copy(tmp, ri)
	copy(ri, rj)
	copy(rj, tmp)
}
