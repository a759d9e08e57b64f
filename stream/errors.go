// SPDX-License-Identifier: EPL-2.0

package stream

import "errors"

var (
	// ErrTrackClosed is returned by Send once the engine has discarded the
	// consumer (the track was cleared or its queue entry dropped).
	ErrTrackClosed = errors.New("track stream closed by consumer")
	// ErrAbandoned is returned when a producer is used after Close or Finish.
	ErrAbandoned = errors.New("track stream already abandoned")
	// ErrQueueFull is returned by Queue when every slot is taken.
	ErrQueueFull = errors.New("track queue is full")

	ErrInvalidOutputRate = errors.New("output rate must be positive")
	ErrInvalidCapacity   = errors.New("capacity must be positive")
)
