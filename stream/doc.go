// SPDX-License-Identifier: EPL-2.0

// Package stream is the real-time half of audplay: a render engine fed by
// bounded per-track channels.
//
// A decode goroutine obtains a track from the handle, queues the consumer
// end and writes converted audio through the producer end:
//
//	engine, handle, _ := stream.New(stream.Options{OutputRate: 48000})
//	ts, producer, _ := handle.SpawnTrackStream(44100)
//	_ = handle.Queue(ts)
//	handle.Play()
//
//	for samples := range decoded {
//	    if err := producer.Send(ctx, samples); err != nil {
//	        break
//	    }
//	}
//	_ = producer.Finish(ctx)
//
// The device callback calls engine.Fill (or engine.Read for encoded bytes).
// Fill never blocks and never allocates: it reads atomics, copies out of the
// track rings and only tries the queue lock. A producer whose ring is full
// parks in Send until the engine frees space, its context ends, or the
// track is discarded.
//
// When a track finishes mid-callback the engine continues with the next
// queued track in the same buffer, so consecutive tracks play without a gap.
package stream
