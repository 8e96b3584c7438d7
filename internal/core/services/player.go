package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/earshot-labs/earshot/internal/core/domain"
	"github.com/earshot-labs/earshot/internal/core/ports"
)

// Config carries the per-deployment settings the state machine needs. It is
// threaded explicitly from main; there is no package-level configuration.
type Config struct {
	FeedURL   string
	SkillName string
	// ArtObjectKey names the cover-art object handed to the signer for each
	// play command. Empty disables art metadata.
	ArtObjectKey string
}

// Player is the playback session state machine. Each call to Handle is one
// independent turn: load state, apply the event, persist, answer. The store
// is last-write-wins, so overlapping turns for one user race and the later
// save wins; state transitions never truncate the playlist, which keeps a
// lost race harmless.
type Player struct {
	cfg      Config
	store    ports.SessionStore
	sync     *Synchronizer
	signer   ports.ArtSigner
	prompts  Prompts
	logger   *log.Logger
	handlers map[domain.EventKind]handlerFunc
}

type handlerFunc func(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error)

// NewPlayer constructs the state machine. signer may be nil.
func NewPlayer(cfg Config, store ports.SessionStore, sync *Synchronizer, signer ports.ArtSigner, prompts Prompts, logger *log.Logger) *Player {
	p := &Player{
		cfg:     cfg,
		store:   store,
		sync:    sync,
		signer:  signer,
		prompts: prompts,
		logger:  logger,
	}
	p.handlers = map[domain.EventKind]handlerFunc{
		domain.KindLaunch:                 p.handleLaunch,
		domain.KindPlayNewest:             p.handlePlayNewest,
		domain.KindPlayOldest:             p.handlePlayOldest,
		domain.KindChoose:                 p.handleChoose,
		domain.KindPause:                  p.handlePause,
		domain.KindResume:                 p.handleResume,
		domain.KindYes:                    p.handleResume,
		domain.KindNo:                     p.handlePlayNewest,
		domain.KindNext:                   p.handleNext,
		domain.KindPrevious:               p.handlePrevious,
		domain.KindRepeat:                 p.handleRepeat,
		domain.KindShuffleOn:              p.handleShuffleOn,
		domain.KindShuffleOff:             p.handleShuffleOff,
		domain.KindLoopOn:                 p.handleLoopOn,
		domain.KindLoopOff:                p.handleLoopOff,
		domain.KindHelp:                   p.handleHelp,
		domain.KindStop:                   p.handleStop,
		domain.KindSessionEnded:           p.handleSessionEnded,
		domain.KindPlaybackStarted:        p.handlePlaybackSync,
		domain.KindPlaybackStopped:        p.handlePlaybackSync,
		domain.KindPlaybackFinished:       p.handlePlaybackSync,
		domain.KindPlaybackFailed:         p.handlePlaybackFailed,
		domain.KindPlaybackNearlyFinished: p.handleNearlyFinished,
	}
	return p
}

// Handle processes one inbound event for one user. The returned error is
// non-nil only for store failures, which abort the turn; every other fault is
// answered locally with an apology so a raw error never reaches the platform.
func (p *Player) Handle(ctx context.Context, userID string, ev domain.Event) (domain.Response, error) {
	st, found, err := p.loadState(ctx, userID)
	if err != nil {
		return p.apology(), fmt.Errorf("player: load state: %w", err)
	}

	h, ok := p.handlers[ev.Kind]
	if !ok {
		p.logger.Warn("unroutable event", "kind", ev.Kind, "user", userID)
		return p.apology(), nil
	}

	resp, err := h(ctx, userID, st, found, ev)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return p.apology(), fmt.Errorf("player: %w", err)
		}
		p.logger.Error("event failed", "kind", ev.Kind, "user", userID, "err", err)
		return p.apology(), nil
	}
	return normalize(resp), nil
}

// normalize ensures speech-only responses still carry an explicit directive.
func normalize(resp domain.Response) domain.Response {
	if resp.Command.Action == "" {
		resp.Command.Action = domain.ActionNone
	}
	return resp
}

func (p *Player) loadState(ctx context.Context, userID string) (domain.UserState, bool, error) {
	st, err := p.store.Load(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.UserState{}, false, nil
	case err != nil:
		return domain.UserState{}, false, err
	case !st.Valid():
		// Corrupt or partial record: rebuild from the feed.
		p.logger.Warn("discarding invalid persisted state", "user", userID)
		return domain.UserState{}, false, nil
	}
	return st, true, nil
}

// --- user intents ---

func (p *Player) handleLaunch(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	if !found {
		st, err := p.startAtNewest(ctx, userID, st, found)
		if err != nil {
			return domain.Response{}, err
		}
		return domain.Response{
			Speech:     p.prompts.Pickf(promptGreeting, p.cfg.SkillName),
			Command:    p.playCommand(st.Session),
			EndSession: true,
		}, nil
	}

	playlist, err := p.sync.Extend(ctx, p.cfg.FeedURL, st.Playlist)
	if err != nil {
		if !errors.Is(err, domain.ErrFeedUnavailable) {
			return domain.Response{}, err
		}
		p.logger.Warn("feed unavailable on launch, keeping stored playlist", "err", err)
		playlist = st.Playlist
	}
	st.Playlist = playlist
	if err := p.store.Save(ctx, userID, st); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{
		Speech:   p.prompts.Pickf(promptResume, st.Session.Token),
		Reprompt: p.prompts.Pickf(promptResumeReprompt, st.Session.Token),
	}, nil
}

func (p *Player) handlePlayNewest(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	st, err := p.startAtNewest(ctx, userID, st, found)
	if err != nil {
		return domain.Response{}, err
	}
	return domain.Response{
		Speech:     p.prompts.Pick(promptPlayNewest),
		Command:    p.playCommand(st.Session),
		EndSession: true,
	}, nil
}

func (p *Player) handlePlayOldest(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	playlist, err := p.fullSync(ctx, st, found)
	if err != nil {
		return domain.Response{}, err
	}
	st = domain.UserState{Playlist: playlist, Session: domain.NewSessionAt(playlist, 0)}
	if err := p.store.Save(ctx, userID, st); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{
		Speech:     p.prompts.Pick(promptPlayOldest),
		Command:    p.playCommand(st.Session),
		EndSession: true,
	}, nil
}

func (p *Player) handleChoose(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	raw := ev.Param("episode")
	if raw == "" {
		raw = ev.Param("ordinal")
	}
	if raw == "" {
		return domain.Response{
			Speech:   p.prompts.Pick(promptChoose),
			Reprompt: p.prompts.Pick(promptChooseReprompt),
		}, nil
	}
	ordinal, err := strconv.Atoi(raw)
	if err != nil {
		return domain.Response{
			Speech:   p.prompts.Pick(promptChoose),
			Reprompt: p.prompts.Pick(promptChooseReprompt),
		}, nil
	}

	playlist, err := p.fullSync(ctx, st, found)
	if err != nil {
		return domain.Response{}, err
	}
	track, err := playlist.TrackAtOrdinal(ordinal)
	if errors.Is(err, domain.ErrInvalidSelection) {
		// Out of range is recovered locally: clarify, mutate nothing.
		return domain.Response{
			Speech:   p.prompts.Pick(promptChoose),
			Reprompt: p.prompts.Pick(promptChooseReprompt),
		}, nil
	}
	if err != nil {
		return domain.Response{}, err
	}

	st = domain.UserState{
		Playlist: playlist,
		Session:  domain.NewSessionAt(playlist, playlist.IndexOfToken(track.Token)),
	}
	if err := p.store.Save(ctx, userID, st); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{
		Speech:     p.prompts.Pickf(promptPlayingChosen, track.Token),
		Command:    p.playCommand(st.Session),
		EndSession: true,
	}, nil
}

func (p *Player) handlePause(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	// No state mutation: the engine's playback-stopped event records the
	// offset the stream actually paused at.
	return domain.Response{
		Command:    domain.PlaybackCommand{Action: domain.ActionStop},
		EndSession: true,
	}, nil
}

func (p *Player) handleResume(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	if !found {
		return p.handlePlayNewest(ctx, userID, st, found, ev)
	}
	return domain.Response{
		Command:    p.playCommand(st.Session),
		EndSession: true,
	}, nil
}

func (p *Player) handleNext(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	if !found {
		return p.apology(), nil
	}
	session, err := domain.Next(st.Playlist, st.Session)
	if errors.Is(err, domain.ErrEndOfPlaylist) {
		return domain.Response{Speech: p.prompts.Pick(promptEndOfPlaylist), EndSession: true}, nil
	}
	if err != nil {
		return domain.Response{}, err
	}
	st.Session = session
	if err := p.store.Save(ctx, userID, st); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{Command: p.playCommand(st.Session), EndSession: true}, nil
}

func (p *Player) handlePrevious(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	if !found {
		return p.apology(), nil
	}
	session, err := domain.Previous(st.Playlist, st.Session)
	if errors.Is(err, domain.ErrStartOfPlaylist) {
		return domain.Response{Speech: p.prompts.Pick(promptStartOfPlaylist), EndSession: true}, nil
	}
	if err != nil {
		return domain.Response{}, err
	}
	st.Session = session
	if err := p.store.Save(ctx, userID, st); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{Command: p.playCommand(st.Session), EndSession: true}, nil
}

func (p *Player) handleRepeat(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	if !found {
		return p.apology(), nil
	}
	// Replay the current track from the top without persisting anything.
	session := domain.NewSessionAt(st.Playlist, st.Session.Index)
	session.Loop = st.Session.Loop
	session.Shuffle = st.Session.Shuffle
	return domain.Response{Command: p.playCommand(session), EndSession: true}, nil
}

func (p *Player) handleShuffleOn(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	if !found {
		return p.apology(), nil
	}
	st.Playlist = st.Playlist.Shuffle(st.Session.Index)
	st.Session.Index = 0
	st.Session.Shuffle = true
	if err := p.store.Save(ctx, userID, st); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{Speech: p.prompts.Pick(promptShuffleOn), EndSession: true}, nil
}

func (p *Player) handleShuffleOff(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	if !found {
		return p.apology(), nil
	}
	// Restoring natural order needs the live feed: the stored playlist is the
	// shuffled permutation, and persisting it with shuffle off would leave the
	// index pointing at the wrong track. No fallback here; the turn fails.
	playlist, err := p.sync.FetchFull(ctx, p.cfg.FeedURL)
	if err != nil {
		return domain.Response{}, err
	}
	if len(playlist) == 0 {
		return domain.Response{}, fmt.Errorf("feed has no playable entries: %w", domain.ErrFeedUnavailable)
	}

	// Tokens equal natural ordinals, so the stored token doubles as the
	// session's natural position. Guard the coupling: a token that does not
	// parse or falls outside the fresh playlist falls back to a scan.
	index := -1
	if n, err := strconv.Atoi(st.Session.Token); err == nil {
		index = n - 1
	}
	if index < 0 || index >= len(playlist) {
		p.logger.Warn("session token is not a valid natural ordinal",
			"token", st.Session.Token, "playlist_len", len(playlist))
		index = playlist.IndexOfToken(st.Session.Token)
	}

	st.Playlist = playlist
	st.Session.Index = index
	st.Session.Shuffle = false
	if err := p.store.Save(ctx, userID, st); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{Speech: p.prompts.Pick(promptShuffleOff), EndSession: true}, nil
}

func (p *Player) handleLoopOn(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	return p.setLoop(ctx, userID, st, found, true, promptLoopOn)
}

func (p *Player) handleLoopOff(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	return p.setLoop(ctx, userID, st, found, false, promptLoopOff)
}

func (p *Player) setLoop(ctx context.Context, userID string, st domain.UserState, found, loop bool, key string) (domain.Response, error) {
	if !found {
		return p.apology(), nil
	}
	st.Session.Loop = loop
	if err := p.store.Save(ctx, userID, st); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{Speech: p.prompts.Pick(key), EndSession: true}, nil
}

func (p *Player) handleHelp(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	return domain.Response{
		Speech:   p.prompts.Pick(promptHelp),
		Reprompt: p.prompts.Pick(promptHelpReprompt),
	}, nil
}

func (p *Player) handleStop(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	return domain.Response{Speech: p.prompts.Pick(promptGoodbye), EndSession: true}, nil
}

func (p *Player) handleSessionEnded(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	p.logger.Info("session ended", "user", userID, "reason", ev.Param("reason"))
	return domain.Response{Command: domain.PlaybackCommand{Action: domain.ActionNone}}, nil
}

// --- playback engine events ---

// handlePlaybackSync reconciles started/stopped/finished events: the reported
// token and offset are the truth, and index/url/title are re-derived from
// them. Events may arrive out of order and more than once; applying one is
// idempotent.
func (p *Player) handlePlaybackSync(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	if !found {
		return domain.Response{Command: domain.PlaybackCommand{Action: domain.ActionNone}}, nil
	}
	index := st.Playlist.IndexOfToken(ev.ReportedToken)
	st.Session.Index = index
	st.Session.Token = ev.ReportedToken
	st.Session.URL = st.Playlist[index].URL
	st.Session.Title = st.Playlist[index].Title
	st.Session.OffsetMs = ev.ReportedOffsetMs
	if err := p.store.Save(ctx, userID, st); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{Command: domain.PlaybackCommand{Action: domain.ActionNone}}, nil
}

func (p *Player) handlePlaybackFailed(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	p.logger.Error("playback failed", "user", userID,
		"token", ev.ReportedToken, "error", ev.Param("error"))
	return p.handlePlaybackSync(ctx, userID, st, found, ev)
}

func (p *Player) handleNearlyFinished(ctx context.Context, userID string, st domain.UserState, found bool, ev domain.Event) (domain.Response, error) {
	if !found {
		return domain.Response{Command: domain.PlaybackCommand{Action: domain.ActionNone}}, nil
	}
	next, err := domain.Next(st.Playlist, st.Session)
	if errors.Is(err, domain.ErrEndOfPlaylist) {
		return domain.Response{Command: domain.PlaybackCommand{Action: domain.ActionNone}}, nil
	}
	if err != nil {
		return domain.Response{}, err
	}
	// Nothing is persisted here: the playback-started event for the enqueued
	// track re-derives and saves the new position.
	cmd := p.playCommand(next)
	cmd.Action = domain.ActionEnqueue
	cmd.ContinuityToken = st.Playlist[st.Session.Index].Token
	return domain.Response{Command: cmd}, nil
}

// --- helpers ---

// fullSync fetches the complete playlist, falling back to the persisted one
// when the feed is down and prior state exists. With no prior state a feed
// failure fails the whole request.
func (p *Player) fullSync(ctx context.Context, st domain.UserState, found bool) (domain.Playlist, error) {
	playlist, err := p.sync.FetchFull(ctx, p.cfg.FeedURL)
	if err != nil {
		if found && len(st.Playlist) > 0 && errors.Is(err, domain.ErrFeedUnavailable) {
			p.logger.Warn("feed unavailable, using stored playlist", "err", err)
			return st.Playlist, nil
		}
		return nil, err
	}
	if len(playlist) == 0 {
		if found && len(st.Playlist) > 0 {
			p.logger.Warn("feed returned no playable entries, using stored playlist")
			return st.Playlist, nil
		}
		return nil, fmt.Errorf("feed has no playable entries: %w", domain.ErrFeedUnavailable)
	}
	return playlist, nil
}

// startAtNewest replaces the user's state with a fresh session on the newest
// episode and persists it.
func (p *Player) startAtNewest(ctx context.Context, userID string, st domain.UserState, found bool) (domain.UserState, error) {
	playlist, err := p.fullSync(ctx, st, found)
	if err != nil {
		return domain.UserState{}, err
	}
	st = domain.UserState{
		Playlist: playlist,
		Session:  domain.NewSessionAt(playlist, len(playlist)-1),
	}
	if err := p.store.Save(ctx, userID, st); err != nil {
		return domain.UserState{}, err
	}
	return st, nil
}

// playCommand builds a replace-all directive for the session's current track,
// resuming at its stored offset.
func (p *Player) playCommand(s domain.PlaybackSession) domain.PlaybackCommand {
	return domain.PlaybackCommand{
		Action:   domain.ActionReplace,
		Token:    s.Token,
		URL:      s.URL,
		Title:    s.Title,
		Subtitle: "Episode " + s.Token,
		OffsetMs: s.OffsetMs,
		ArtURL:   p.artURL(),
	}
}

func (p *Player) artURL() string {
	if p.signer == nil || p.cfg.ArtObjectKey == "" {
		return ""
	}
	signed, err := p.signer.Sign(p.cfg.ArtObjectKey)
	if err != nil {
		p.logger.Warn("art signing failed, sending no art", "err", err)
		return ""
	}
	return signed
}

func (p *Player) apology() domain.Response {
	return normalize(domain.Response{
		Speech:   p.prompts.Pick(promptError),
		Reprompt: p.prompts.Pick(promptErrorReprompt),
	})
}
