package domain

// CommandAction names the directive handed back to the playback engine.
type CommandAction string

const (
	ActionNone    CommandAction = "none"
	ActionReplace CommandAction = "replace"
	ActionEnqueue CommandAction = "enqueue"
	ActionStop    CommandAction = "stop"
)

// PlaybackCommand is the next playback directive. ContinuityToken carries the
// previously playing track's token on enqueue so the engine can validate a
// gapless transition; it is empty for every other action.
type PlaybackCommand struct {
	Action          CommandAction `json:"action"`
	Token           string        `json:"token,omitempty"`
	URL             string        `json:"url,omitempty"`
	Title           string        `json:"title,omitempty"`
	Subtitle        string        `json:"subtitle,omitempty"`
	OffsetMs        int64         `json:"offsetMs,omitempty"`
	ContinuityToken string        `json:"continuityToken,omitempty"`
	ArtURL          string        `json:"artUrl,omitempty"`
}

// Response is the full outcome of one turn: what to say, what to play, and
// whether the voice session stays open for a follow-up.
type Response struct {
	Speech     string          `json:"speech,omitempty"`
	Reprompt   string          `json:"reprompt,omitempty"`
	Command    PlaybackCommand `json:"command"`
	EndSession bool            `json:"endSession"`
}
