// SPDX-License-Identifier: EPL-2.0

// Package player fetches, decodes and feeds tracks into a stream engine.
//
// A Player owns one feeder goroutine per playback session. The feeder
// decodes tracks strictly in order: the next track is opened and queued
// only once the previous one has been fully written, so at most one
// track is buffering ahead of the one being heard. Tracks are either
// local paths or http(s) URLs.
//
// Playback changes are reported as Events suitable for a UI:
//
//	{"event":"UpdatePlaying","data":{"playing":true}}
//	{"event":"UpdateCurrentTrack","data":{"current_track":{...}}}
package player
