// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

// ErrInvalidStream wraps go-mp3 failures to parse the first frame.
var ErrInvalidStream = errors.New("invalid MP3 stream")
