// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// ClampFloat32 limits x to [-1, 1]. NaN maps to 0 so every canonical value
// has a defined device representation.
func ClampFloat32(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	if x != x {
		return 0
	}
	return x
}

func Float32ToInt8(x float32) int8 {
	return int8(ClampFloat32(x) * math.MaxInt8)
}

func Float32ToInt16(x float32) int16 {
	// Use 32767 for positive max to avoid overflow
	return int16(ClampFloat32(x) * math.MaxInt16)
}

func Float32ToInt32(x float32) int32 {
	// float32 cannot hold MaxInt32 exactly, scale in float64
	return int32(float64(ClampFloat32(x)) * math.MaxInt32)
}

func Float32ToInt64(x float32) int64 {
	v := float64(ClampFloat32(x)) * math.MaxInt64
	// MaxInt64 rounds up to 2^63 in float64, which is out of range
	if v >= 0x1p63 {
		return math.MaxInt64
	}
	return int64(v)
}

// Unsigned formats are offset binary: flipping the sign bit of the signed
// value moves silence to the midpoint 2^(n-1).

func Float32ToUint8(x float32) uint8 {
	return uint8(Float32ToInt8(x)) ^ 0x80
}

func Float32ToUint16(x float32) uint16 {
	return uint16(Float32ToInt16(x)) ^ 0x8000
}

func Float32ToUint32(x float32) uint32 {
	return uint32(Float32ToInt32(x)) ^ 0x80000000
}

func Float32ToUint64(x float32) uint64 {
	return uint64(Float32ToInt64(x)) ^ 0x8000000000000000
}

func Float32ToFloat64(x float32) float64 {
	return float64(ClampFloat32(x))
}
