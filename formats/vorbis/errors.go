// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

// ErrInvalidStream wraps oggvorbis failures to read the stream headers.
var ErrInvalidStream = errors.New("invalid Ogg Vorbis stream")
