// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	// ErrInvalidStream wraps failures to parse the FLAC signature or
	// STREAMINFO block.
	ErrInvalidStream = errors.New("invalid FLAC stream")
	// ErrUnsupportedBitDepth indicates a sample size outside 4..32 bits
	ErrUnsupportedBitDepth = errors.New("unsupported FLAC bit depth")
)
