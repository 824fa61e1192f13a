// internal/probe/salinity.go
package probe

import "math"

// PSS-78 coefficients (UNESCO 1981), atmospheric pressure only.
var (
	pssA = [6]float64{0.0080, -0.1692, 25.3851, 14.0941, -7.0261, 2.7081}
	pssB = [6]float64{0.0005, -0.0056, -0.0066, -0.0375, 0.0636, -0.0144}
	pssC = [5]float64{0.6766097, 2.00564e-2, 1.104259e-4, -6.9698e-7, 1.0031e-9}
)

const (
	pssK = 0.0162

	// conductivityStandard is C(35, 15, 0) in mS/cm.
	conductivityStandard = 42.914

	rtUpper        = 5.0
	bisectionSteps = 100
)

// practicalSalinity returns the practical salinity for conductivity ratio rt
// at temperature t (degC).
func practicalSalinity(rt, t float64) float64 {
	if rt <= 0 {
		return 0
	}
	var s, ds float64
	p := 1.0
	r := math.Sqrt(rt)
	for i := 0; i < 6; i++ {
		s += pssA[i] * p
		ds += pssB[i] * p
		p *= r
	}
	return s + (t-15)/(1+pssK*(t-15))*ds
}

// ConductivityFromSalinity inverts PSS-78: given practical salinity (PSU,
// numerically ppt) and temperature (degC) it returns conductivity in mS/cm.
func ConductivityFromSalinity(salinity, t float64) float64 {
	if salinity <= 0 {
		return 0
	}

	lo, hi := 0.0, rtUpper
	for i := 0; i < bisectionSteps; i++ {
		mid := (lo + hi) / 2
		if practicalSalinity(mid, t) < salinity {
			lo = mid
		} else {
			hi = mid
		}
	}
	rt := (lo + hi) / 2

	var ratio float64
	p := 1.0
	for i := 0; i < 5; i++ {
		ratio += pssC[i] * p
		p *= t
	}
	return rt * ratio * conductivityStandard
}
