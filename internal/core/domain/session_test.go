package domain

import "testing"

func TestUserState_Valid(t *testing.T) {
	playlist := makePlaylist(3)

	tests := []struct {
		name  string
		state UserState
		want  bool
	}{
		{
			name:  "complete record",
			state: UserState{Playlist: playlist, Session: NewSessionAt(playlist, 2)},
			want:  true,
		},
		{
			name:  "empty playlist",
			state: UserState{Session: PlaybackSession{Index: 0, Token: "1"}},
			want:  false,
		},
		{
			name:  "missing token",
			state: UserState{Playlist: playlist, Session: PlaybackSession{Index: 1}},
			want:  false,
		},
		{
			name:  "index beyond playlist",
			state: UserState{Playlist: playlist, Session: PlaybackSession{Index: 3, Token: "1"}},
			want:  false,
		},
		{
			name:  "negative index",
			state: UserState{Playlist: playlist, Session: PlaybackSession{Index: -1, Token: "1"}},
			want:  false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.Valid(); got != tc.want {
				t.Fatalf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewSessionAt(t *testing.T) {
	playlist := makePlaylist(4)
	s := NewSessionAt(playlist, 3)

	if s.Index != 3 || s.Token != "4" || s.OffsetMs != 0 {
		t.Fatalf("unexpected session: %+v", s)
	}
	if s.Loop || s.Shuffle {
		t.Fatalf("expected flags reset, got %+v", s)
	}
	if s.URL != playlist[3].URL || s.Title != playlist[3].Title {
		t.Fatalf("track fields not copied: %+v", s)
	}
}
