package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rankTol bounds how small an R diagonal entry may be, relative to the
// largest, before the corresponding column is treated as collinear.
const rankTol = 1e-10

// olsFit computes ordinary least squares coefficients using QR
// factorization. QR with back substitution is deterministic, so repeated
// fits over identical inputs yield bit-identical coefficients.
func olsFit(x mat.Matrix, y []float64, fitIntercept bool) (float64, []float64, error) {
	m, n := x.Dims()

	if fitIntercept {
		ones := make([]float64, m)
		floats.AddConst(1.0, ones)
		onesMx := mat.NewDense(1, m, ones)
		xT := x.T()

		var xWithOnes mat.Dense
		xWithOnes.Stack(onesMx, xT)
		x = xWithOnes.T()
		_, n = x.Dims()
	}

	if m < n {
		return 0, nil, fmt.Errorf("regressor with %d coefficients requires at least %d observations, got %d, %w",
			n, n, m, ErrInsufficientData)
	}

	yMx := mat.NewDense(1, m, y)

	qr := new(mat.QR)
	qr.Factorize(x)

	q := new(mat.Dense)
	r := new(mat.Dense)

	qr.QTo(q)
	qr.RTo(r)

	var diagMax float64
	for i := 0; i < n; i++ {
		if v := math.Abs(r.At(i, i)); v > diagMax {
			diagMax = v
		}
	}
	for i := 0; i < n; i++ {
		if math.Abs(r.At(i, i)) <= rankTol*diagMax {
			return 0, nil, fmt.Errorf("column %d of the design matrix is collinear, %w", i, ErrRankDeficient)
		}
	}
	yq := new(mat.Dense)
	yq.Mul(yMx, q)

	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		c[i] = yq.At(0, i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= r.At(i, i)
	}

	if fitIntercept {
		return c[0], c[1:], nil
	}
	return 0.0, c, nil
}
