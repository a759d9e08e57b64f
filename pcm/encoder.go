// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ik5/audplay/utils"
)

// Encoder writes as many samples of src as fit into dst in little-endian
// device representation and returns the number of bytes written.
type Encoder func(dst []byte, src []float32) int

// Encoder returns the conversion function for f.
func (f Format) Encoder() (Encoder, error) {
	switch f {
	case Int8:
		return encodeInt8, nil
	case Int16:
		return encodeInt16, nil
	case Int32:
		return encodeInt32, nil
	case Int64:
		return encodeInt64, nil
	case Uint8:
		return encodeUint8, nil
	case Uint16:
		return encodeUint16, nil
	case Uint32:
		return encodeUint32, nil
	case Uint64:
		return encodeUint64, nil
	case Float32:
		return encodeFloat32, nil
	case Float64:
		return encodeFloat64, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
}

func encodeInt8(dst []byte, src []float32) int {
	n := min(len(src), len(dst))
	for i := range n {
		dst[i] = byte(utils.Float32ToInt8(src[i]))
	}
	return n
}

func encodeUint8(dst []byte, src []float32) int {
	n := min(len(src), len(dst))
	for i := range n {
		dst[i] = utils.Float32ToUint8(src[i])
	}
	return n
}

func encodeInt16(dst []byte, src []float32) int {
	n := min(len(src), len(dst)/2)
	for i := range n {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(utils.Float32ToInt16(src[i])))
	}
	return n * 2
}

func encodeUint16(dst []byte, src []float32) int {
	n := min(len(src), len(dst)/2)
	for i := range n {
		binary.LittleEndian.PutUint16(dst[2*i:], utils.Float32ToUint16(src[i]))
	}
	return n * 2
}

func encodeInt32(dst []byte, src []float32) int {
	n := min(len(src), len(dst)/4)
	for i := range n {
		binary.LittleEndian.PutUint32(dst[4*i:], uint32(utils.Float32ToInt32(src[i])))
	}
	return n * 4
}

func encodeUint32(dst []byte, src []float32) int {
	n := min(len(src), len(dst)/4)
	for i := range n {
		binary.LittleEndian.PutUint32(dst[4*i:], utils.Float32ToUint32(src[i]))
	}
	return n * 4
}

func encodeFloat32(dst []byte, src []float32) int {
	n := min(len(src), len(dst)/4)
	for i := range n {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(utils.ClampFloat32(src[i])))
	}
	return n * 4
}

func encodeInt64(dst []byte, src []float32) int {
	n := min(len(src), len(dst)/8)
	for i := range n {
		binary.LittleEndian.PutUint64(dst[8*i:], uint64(utils.Float32ToInt64(src[i])))
	}
	return n * 8
}

func encodeUint64(dst []byte, src []float32) int {
	n := min(len(src), len(dst)/8)
	for i := range n {
		binary.LittleEndian.PutUint64(dst[8*i:], utils.Float32ToUint64(src[i]))
	}
	return n * 8
}

func encodeFloat64(dst []byte, src []float32) int {
	n := min(len(src), len(dst)/8)
	for i := range n {
		binary.LittleEndian.PutUint64(dst[8*i:], math.Float64bits(utils.Float32ToFloat64(src[i])))
	}
	return n * 8
}
