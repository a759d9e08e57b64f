// SPDX-License-Identifier: EPL-2.0

package player

// Event names.
const (
	EventUpdatePlaying      = "UpdatePlaying"
	EventUpdateCurrentTrack = "UpdateCurrentTrack"
)

// Event is a playback update. Data is UpdatePlaying or UpdateCurrentTrack.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type UpdatePlaying struct {
	Playing bool `json:"playing"`
}

type UpdateCurrentTrack struct {
	CurrentTrack CurrentTrack `json:"current_track"`
}

// CurrentTrack describes the track being heard.
type CurrentTrack struct {
	ID          string `json:"id"`
	TrackTitle  string `json:"track_title"`
	ArtistTitle string `json:"artist_title"`
	CoverArtID  int64  `json:"cover_art_id"`
}

func playingEvent(playing bool) Event {
	return Event{Event: EventUpdatePlaying, Data: UpdatePlaying{Playing: playing}}
}

func currentTrackEvent(t Track) Event {
	return Event{
		Event: EventUpdateCurrentTrack,
		Data: UpdateCurrentTrack{CurrentTrack: CurrentTrack{
			ID:          t.ID,
			TrackTitle:  t.Title,
			ArtistTitle: t.Artist,
			CoverArtID:  t.CoverArtID,
		}},
	}
}
