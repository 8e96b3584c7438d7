package domain

// PlaybackSession is the mutable per-user playback record. Index is a
// position in the current play order; Token normally equals
// Playlist[Index].Token, except transiently while reconciling an engine event,
// where the reported token is the source of truth used to re-derive Index.
type PlaybackSession struct {
	Index    int    `json:"index"`
	Token    string `json:"token"`
	URL      string `json:"url"`
	OffsetMs int64  `json:"offset"`
	Title    string `json:"title"`
	Loop     bool   `json:"loop"`
	Shuffle  bool   `json:"shuffle"`
}

// NewSessionAt returns a fresh session positioned at index in p, at offset 0,
// with loop and shuffle off.
func NewSessionAt(p Playlist, index int) PlaybackSession {
	return PlaybackSession{}.moveTo(p, index)
}

func (s PlaybackSession) moveTo(p Playlist, index int) PlaybackSession {
	t := p[index]
	s.Index = index
	s.Token = t.Token
	s.URL = t.URL
	s.Title = t.Title
	s.OffsetMs = 0
	return s
}

// UserState is the persisted aggregate for one user: the playlist and the
// session that indexes into it. They are loaded, mutated, and saved together.
type UserState struct {
	Playlist Playlist        `json:"playlist"`
	Session  PlaybackSession `json:"playback_session_data"`
}

// Valid reports whether a loaded record is complete enough to resume from.
// A record with no tracks, no session token, or an index outside the playlist
// is treated as absent and rebuilt from the feed.
func (s UserState) Valid() bool {
	return len(s.Playlist) > 0 &&
		s.Session.Token != "" &&
		s.Session.Index >= 0 &&
		s.Session.Index < len(s.Playlist)
}
