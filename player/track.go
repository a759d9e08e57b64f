// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats"
)

// Track is one entry of a play list.
type Track struct {
	// ID is assigned when the track is handed to a Player if empty.
	ID string
	// Location is a local path or an http(s) URL.
	Location string

	Title      string
	Artist     string
	CoverArtID int64
}

// TrackAt returns a Track for location titled after its base name.
func TrackAt(location string) Track {
	title := location
	if u, err := url.Parse(location); err == nil && isRemote(u) {
		title = u.Path
	}
	return Track{Location: location, Title: path.Base(title)}
}

func isRemote(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

func withIDs(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		out[i] = t
	}
	return out
}

// closingSource closes the underlying stream with the decoder.
type closingSource struct {
	audio.Source
	body io.Closer
}

func (s closingSource) Close() error {
	err := s.Source.Close()
	// Some decoders already close their input
	if berr := s.body.Close(); berr != nil && !errors.Is(berr, os.ErrClosed) {
		err = errors.Join(err, berr)
	}
	return err
}

// open fetches or opens t and decodes it with the registry.
func (p *Player) open(ctx context.Context, t Track) (audio.Source, error) {
	u, err := url.Parse(t.Location)
	if err == nil && isRemote(u) {
		return p.fetch(ctx, t.Location, u.Path)
	}

	key, ok := formats.FromPath(t.Location)
	if !ok {
		return nil, fmt.Errorf("%s: %w", t.Location, ErrUnknownFormat)
	}

	f, err := os.Open(t.Location)
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}

	return p.decode(key, f)
}

func (p *Player) fetch(ctx context.Context, location, urlPath string) (audio.Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch track: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %w: %d", location, ErrHTTPStatus, resp.StatusCode)
	}

	key, ok := formats.FromContentType(resp.Header.Get("Content-Type"))
	if !ok {
		key, ok = formats.FromPath(urlPath)
	}
	if !ok {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", location, ErrUnknownFormat)
	}

	return p.decode(key, resp.Body)
}

func (p *Player) decode(key string, body io.ReadCloser) (audio.Source, error) {
	src, err := p.registry.Decode(key, body)
	if err != nil {
		body.Close()
		if errors.Is(err, audio.ErrNoDecoder) {
			return nil, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
		}
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	return closingSource{Source: src, body: body}, nil
}

func locationKind(location string) string {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return "remote"
	}
	return "local"
}
