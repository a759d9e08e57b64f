// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize      = errors.New("dst size must be multiple of channels")
	ErrInvalidRate         = errors.New("sample rate must be positive")
	ErrInvalidBlockSize    = errors.New("block size too small")
	ErrInvalidChannels     = errors.New("invalid channel count")
	ErrBlockSize           = errors.New("block does not match converter block size")
	ErrConverterFlushed    = errors.New("converter already flushed")
	ErrUnsupportedChannels = errors.New("only mono and stereo sources are supported")
	ErrNoDecoder           = errors.New("no decoder registered for format")
)
