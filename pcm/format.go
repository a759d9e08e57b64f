// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"fmt"
	"strings"
)

// Format is a device sample representation.
type Format int

const (
	Invalid Format = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

var formatNames = [...]string{
	Invalid: "invalid",
	Int8:    "s8",
	Int16:   "s16",
	Int32:   "s32",
	Int64:   "s64",
	Uint8:   "u8",
	Uint16:  "u16",
	Uint32:  "u32",
	Uint64:  "u64",
	Float32: "f32",
	Float64: "f64",
}

// Formats lists every valid Format.
var Formats = []Format{Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64, Float32, Float64}

func (f Format) Valid() bool {
	return f > Invalid && f <= Float64
}

func (f Format) String() string {
	if !f.Valid() {
		return formatNames[Invalid]
	}
	return formatNames[f]
}

// ParseFormat accepts the names produced by String ("s16", "f32", ...).
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats {
		if formatNames[f] == s {
			return f, nil
		}
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// BytesPerSample is the encoded size of one sample, 0 for an invalid Format.
func (f Format) BytesPerSample() int {
	switch f {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

// PutSilence fills dst with the encoded silence value of f. A trailing
// partial sample is zeroed.
func (f Format) PutSilence(dst []byte) {
	size := f.BytesPerSample()
	if size == 0 {
		clear(dst)
		return
	}

	var hi byte
	switch f {
	case Uint8, Uint16, Uint32, Uint64:
		hi = 0x80
	}

	clear(dst)
	if hi == 0 {
		return
	}
	// little-endian: the sign bit lives in the last byte of each sample
	for i := size - 1; i < len(dst); i += size {
		dst[i] = hi
	}
}
