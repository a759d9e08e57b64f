// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	// ErrClosed is returned by operations on a closed Player.
	ErrClosed = errors.New("player is closed")
	// ErrNoTracks is returned by Play without any track.
	ErrNoTracks = errors.New("no tracks given")
	// ErrUnknownFormat is returned when neither the Content-Type nor the
	// extension of a track names a registered decoder.
	ErrUnknownFormat = errors.New("unknown audio format")
	// ErrHTTPStatus is returned when fetching a track answers with a
	// status other than 200.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)
