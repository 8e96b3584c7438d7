package domain

// EventKind classifies an inbound request: either a user intent already
// decoded by the voice platform, or a lifecycle event emitted by its playback
// engine. Dispatch is a single table keyed by kind; there are no handler
// predicates.
type EventKind string

const (
	KindLaunch     EventKind = "launch"
	KindPlayNewest EventKind = "play-newest"
	KindPlayOldest EventKind = "play-oldest"
	KindChoose     EventKind = "choose"
	KindPause      EventKind = "pause"
	KindResume     EventKind = "resume"
	KindYes        EventKind = "yes"
	KindNo         EventKind = "no"
	KindNext       EventKind = "next"
	KindPrevious   EventKind = "previous"
	KindRepeat     EventKind = "repeat"
	KindShuffleOn  EventKind = "shuffle-on"
	KindShuffleOff EventKind = "shuffle-off"
	KindLoopOn     EventKind = "loop-on"
	KindLoopOff    EventKind = "loop-off"
	KindHelp       EventKind = "help"
	KindStop       EventKind = "stop"

	KindSessionEnded EventKind = "session-ended"

	// Lifecycle events reported by the external playback engine. These arrive
	// unordered and at least once; handlers must be idempotent.
	KindPlaybackStarted        EventKind = "playback-started"
	KindPlaybackStopped        EventKind = "playback-stopped"
	KindPlaybackNearlyFinished EventKind = "playback-nearly-finished"
	KindPlaybackFinished       EventKind = "playback-finished"
	KindPlaybackFailed         EventKind = "playback-failed"
)

// Event is the transport-agnostic inbound request. ReportedToken and
// ReportedOffsetMs are only set on playback lifecycle events and describe what
// the engine was actually playing, which may disagree with persisted state.
type Event struct {
	Kind             EventKind         `json:"kind"`
	Parameters       map[string]string `json:"parameters,omitempty"`
	ReportedToken    string            `json:"reportedToken,omitempty"`
	ReportedOffsetMs int64             `json:"reportedOffsetMs,omitempty"`
}

// Param returns the named parameter or "" when absent.
func (e Event) Param(key string) string {
	return e.Parameters[key]
}
