// SPDX-License-Identifier: EPL-2.0

package utils

// CatmullRomWeights returns the coefficients applied to four consecutive
// samples y0..y3 to interpolate between y1 and y2 at fraction x in [0, 1].
// The weights sum to 1, and x == 0 and x == 1 select y1 and y2 exactly.
func CatmullRomWeights(x float32) [4]float32 {
	x2 := x * x
	x3 := x2 * x

	return [4]float32{
		0.5 * (-x3 + 2*x2 - x),
		0.5 * (3*x3 - 5*x2 + 2),
		0.5 * (-3*x3 + 4*x2 + x),
		0.5 * (x3 - x2),
	}
}

// CubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at
// fraction x between y1 and y2.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	return Apply4(CatmullRomWeights(x), y0, y1, y2, y3)
}

// Apply4 is the weighted sum of four samples.
func Apply4(w [4]float32, y0, y1, y2, y3 float32) float32 {
	return w[0]*y0 + w[1]*y1 + w[2]*y2 + w[3]*y3
}
