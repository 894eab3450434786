// Package session owns the editing state of one scene: the html/css code,
// the track list and scene duration derived from it, the playback driver
// and the preview event channel. All mutation goes through the session so
// there is exactly one writer at a time and every edit re-derives tracks
// from the latest text.
package session

import (
	"strconv"
	"sync"
	"time"

	"motionedit/cssmodel"
	"motionedit/playback"
)

// CodeState is the single source of truth for a scene. Every mutation
// replaces it wholesale; there is no patch representation.
type CodeState struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

// Session is one editing session.
//
// Lock order: the playback driver calls sceneDuration (which takes s.mu)
// while holding its own lock, so session code must never invoke driver
// methods with s.mu held.
type Session struct {
	ID       string
	Created  time.Time
	lastSeen time.Time

	mu            sync.Mutex
	code          CodeState
	tracks        []cssmodel.Track
	sceneDuration float64

	driver *playback.Driver
	events *Bus
}

// New creates a session around the given initial code. A zero tick keeps
// the driver's default frame interval.
func New(id string, code CodeState, tick time.Duration) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:       id,
		Created:  now,
		lastSeen: now,
		events:   NewBus(),
	}
	s.driver = playback.NewDriver(s.SceneDuration, tick)
	s.driver.OnUpdate = func(st playback.State) {
		s.events.Publish(Event{Type: EventScrubTo, Time: st.CurrentTime})
	}
	s.setCode(code, false)
	return s
}

// Code returns the current code state.
func (s *Session) Code() CodeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// Tracks returns a copy of the derived track list.
func (s *Session) Tracks() []cssmodel.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cssmodel.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// SceneDuration returns the derived total playable length.
func (s *Session) SceneDuration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sceneDuration
}

// Playback exposes the session's playback driver.
func (s *Session) Playback() *playback.Driver {
	return s.driver
}

// Events returns a preview channel subscription and its cancel function.
func (s *Session) Events() (<-chan Event, func()) {
	return s.events.Subscribe()
}

// Publish puts an event on the preview channel.
func (s *Session) Publish(ev Event) {
	s.events.Publish(ev)
}

// ReplaceCode swaps the whole code state and re-derives tracks and scene
// duration from scratch.
func (s *Session) ReplaceCode(code CodeState) {
	s.setCode(code, true)
}

// ReplaceCSS replaces only the stylesheet, keeping the markup.
func (s *Session) ReplaceCSS(css string) {
	s.mu.Lock()
	code := s.code
	s.mu.Unlock()
	code.CSS = css
	s.setCode(code, true)
}

// SetTrackDelay rewrites one selector's animation-delay in the latest
// stylesheet text. Implements the timeline drag sink.
func (s *Session) SetTrackDelay(selector string, seconds float64) error {
	s.setTiming(selector, "animation-delay", seconds)
	return nil
}

// SetTrackDuration rewrites one selector's animation-duration in the
// latest stylesheet text. Implements the timeline drag sink.
func (s *Session) SetTrackDuration(selector string, seconds float64) error {
	s.setTiming(selector, "animation-duration", seconds)
	return nil
}

// Reposition moves an element by rewriting its positional properties:
// absolute positioning with left/top as offset-parent-relative percentages.
// Margin and transform are cleared so the percentages alone decide where
// the element sits.
func (s *Session) Reposition(selector string, xPercent, yPercent float64) {
	s.mu.Lock()
	css := s.code.CSS
	css = cssmodel.SetProperty(css, selector, "position", "absolute")
	css = cssmodel.SetProperty(css, selector, "left", formatPercent(xPercent))
	css = cssmodel.SetProperty(css, selector, "top", formatPercent(yPercent))
	css = cssmodel.SetProperty(css, selector, "margin", "0")
	css = cssmodel.SetProperty(css, selector, "transform", "none")
	s.applyCSSLocked(css)
	code := s.code
	s.mu.Unlock()

	s.events.Publish(Event{
		Type:     EventElementDragEnd,
		Selector: selector,
		XPercent: xPercent,
		YPercent: yPercent,
	})
	s.events.Publish(Event{Type: EventCodeReplaced, Code: &code})
}

// ScrubCSS renders the override stylesheet for the current playback time.
func (s *Session) ScrubCSS() string {
	state := s.driver.State()
	return playback.ScrubCSS(s.Tracks(), state.CurrentTime)
}

// Touch refreshes the idle timestamp.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now.UTC()
}

// LastSeen reports the last activity timestamp.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close tears the session down: playback stops and the preview channel
// closes. Idempotent.
func (s *Session) Close() {
	s.driver.Close()
	s.events.Close()
}

func (s *Session) setTiming(selector, property string, seconds float64) {
	s.mu.Lock()
	css := cssmodel.SetProperty(s.code.CSS, selector, property, cssmodel.FormatSeconds(seconds))
	s.applyCSSLocked(css)
	code := s.code
	s.mu.Unlock()

	s.events.Publish(Event{Type: EventCodeReplaced, Code: &code})
}

func (s *Session) setCode(code CodeState, announce bool) {
	s.mu.Lock()
	s.code = code
	s.applyCSSLocked(code.CSS)
	s.mu.Unlock()

	if announce {
		s.events.Publish(Event{Type: EventCodeReplaced, Code: &code})
	}
}

// applyCSSLocked installs new stylesheet text and re-derives the model.
// Caller holds s.mu.
func (s *Session) applyCSSLocked(css string) {
	s.code.CSS = css
	s.tracks = cssmodel.ParseTracks(css)
	s.sceneDuration = cssmodel.SceneDuration(s.tracks)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
