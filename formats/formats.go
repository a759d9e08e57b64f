// SPDX-License-Identifier: EPL-2.0

// Package formats wires every bundled decoder into an audio.Registry and
// maps MIME types and file extensions to registry keys.
package formats

import (
	"mime"
	"path"
	"strings"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/aiff"
	"github.com/ik5/audplay/formats/flac"
	"github.com/ik5/audplay/formats/mp3"
	"github.com/ik5/audplay/formats/vorbis"
	"github.com/ik5/audplay/formats/wav"
)

// Registry keys.
const (
	WAV    = "wav"
	MP3    = "mp3"
	Vorbis = "ogg"
	AIFF   = "aiff"
	FLAC   = "flac"
)

var contentTypes = map[string]string{
	"audio/wav":        WAV,
	"audio/x-wav":      WAV,
	"audio/wave":       WAV,
	"audio/vnd.wave":   WAV,
	"audio/mpeg":       MP3,
	"audio/mp3":        MP3,
	"audio/ogg":        Vorbis,
	"audio/vorbis":     Vorbis,
	"application/ogg":  Vorbis,
	"audio/aiff":       AIFF,
	"audio/x-aiff":     AIFF,
	"audio/flac":       FLAC,
	"audio/x-flac":     FLAC,
	"application/flac": FLAC,
}

var extensions = map[string]string{
	".wav":  WAV,
	".wave": WAV,
	".mp3":  MP3,
	".ogg":  Vorbis,
	".oga":  Vorbis,
	".aif":  AIFF,
	".aiff": AIFF,
	".flac": FLAC,
}

// NewRegistry returns a registry holding every bundled decoder.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(WAV, wav.Decoder{})
	r.Register(MP3, mp3.Decoder{})
	r.Register(Vorbis, vorbis.Decoder{})
	r.Register(AIFF, aiff.Decoder{})
	r.Register(FLAC, flac.Decoder{})
	return r
}

// FromContentType maps a Content-Type header value to a registry key.
func FromContentType(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	key, ok := contentTypes[strings.ToLower(mediaType)]
	return key, ok
}

// FromPath maps a file name or URL path to a registry key by extension.
func FromPath(p string) (string, bool) {
	key, ok := extensions[strings.ToLower(path.Ext(p))]
	return key, ok
}
