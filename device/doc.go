// SPDX-License-Identifier: EPL-2.0

// Package device connects the render engine to the default audio output
// through github.com/ebitengine/oto/v3.
//
// oto opens signed 16-bit, unsigned 8-bit and 32-bit float output. The
// other pcm formats are available through stream.MainStream.Read for
// custom sinks and offline rendering.
package device
