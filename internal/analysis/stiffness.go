package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// StiffnessRatio reports max|Re λ| / min|Re λ| over the eigenvalues of the
// Jacobian whose real parts are meaningfully nonzero. A ratio far above one
// marks a stiff system; a purely oscillatory spectrum reports 1.
func StiffnessRatio(j mat.Matrix) (float64, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(j, mat.EigenNone); !ok {
		return 0, errors.New("analysis: eigendecomposition failed")
	}
	values := eig.Values(nil)

	// Real parts below roundoff of the spectral radius count as zero.
	floor := 0.0
	for _, v := range values {
		if a := cmplx.Abs(v); a > floor {
			floor = a
		}
	}
	floor *= 1e-12

	maxRe, minRe := 0.0, math.Inf(1)
	for _, v := range values {
		re := math.Abs(real(v))
		if re <= floor {
			continue
		}
		if re > maxRe {
			maxRe = re
		}
		if re < minRe {
			minRe = re
		}
	}
	if maxRe == 0 {
		return 1, nil
	}
	return maxRe / minRe, nil
}

// ConditionNumber is the 2-norm condition number of the iteration matrix.
// Values blowing up toward 1/ε mean the Newton solve is running on noise.
func ConditionNumber(a mat.Matrix) float64 {
	return mat.Cond(a, 2)
}
