// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

// ErrUnsupportedFormat is returned for sample formats the output backend
// cannot open.
var ErrUnsupportedFormat = errors.New("sample format not supported by output device")
