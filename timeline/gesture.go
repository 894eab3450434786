package timeline

import "motionedit/cssmodel"

// TimingSink receives live timing edits during a drag. The editing session
// implements it by rewriting the current stylesheet text.
type TimingSink interface {
	SetTrackDelay(selector string, seconds float64) error
	SetTrackDuration(selector string, seconds float64) error
}

// Transport is the slice of playback control a playhead drag needs.
type Transport interface {
	Pause()
	Seek(seconds float64)
	SceneDuration() float64
}

// MoveGesture drags a track body horizontally, shifting its delay. The
// original delay is captured exactly once at gesture start so deltas stay
// anchored while the sink rewrites the stylesheet underneath.
type MoveGesture struct {
	sink      TimingSink
	scale     Scale
	selector  string
	baseDelay float64
	done      bool
}

// NewMoveGesture starts a move drag on the given track.
func NewMoveGesture(sink TimingSink, scale Scale, track cssmodel.Track) *MoveGesture {
	return &MoveGesture{
		sink:      sink,
		scale:     scale,
		selector:  track.Selector,
		baseDelay: track.Delay,
	}
}

// Update applies the current pointer delta and returns the resulting delay.
// It is called on every pointer move, not only on release, so the bar and
// the stylesheet stay synchronized mid-drag.
func (g *MoveGesture) Update(deltaPx float64) (float64, error) {
	if g.done {
		return g.baseDelay, nil
	}
	delay := g.baseDelay + g.scale.PixelToTime(deltaPx)
	if delay < 0 {
		delay = 0
	}
	return delay, g.sink.SetTrackDelay(g.selector, delay)
}

// End finishes the drag with no additional snapping.
func (g *MoveGesture) End() {
	g.done = true
}

// ResizeGesture drags a track's trailing edge, changing its duration.
type ResizeGesture struct {
	sink         TimingSink
	scale        Scale
	selector     string
	baseDuration float64
	done         bool
}

// NewResizeGesture starts a resize drag on the given track.
func NewResizeGesture(sink TimingSink, scale Scale, track cssmodel.Track) *ResizeGesture {
	return &ResizeGesture{
		sink:         sink,
		scale:        scale,
		selector:     track.Selector,
		baseDuration: track.Duration,
	}
}

// Update applies the current pointer delta and returns the resulting
// duration, floored at MinDuration.
func (g *ResizeGesture) Update(deltaPx float64) (float64, error) {
	if g.done {
		return g.baseDuration, nil
	}
	duration := g.baseDuration + g.scale.PixelToTime(deltaPx)
	if duration < MinDuration {
		duration = MinDuration
	}
	return duration, g.sink.SetTrackDuration(g.selector, duration)
}

// End finishes the drag with no additional snapping.
func (g *ResizeGesture) End() {
	g.done = true
}

// PlayheadGesture scrubs the playhead. Starting one always pauses playback.
type PlayheadGesture struct {
	transport Transport
	scale     Scale
}

// NewPlayheadGesture pauses playback and returns the scrub gesture.
func NewPlayheadGesture(transport Transport, scale Scale) *PlayheadGesture {
	transport.Pause()
	return &PlayheadGesture{transport: transport, scale: scale}
}

// Update seeks to the time under the pointer, clamped to the scene.
func (g *PlayheadGesture) Update(offsetPx float64) float64 {
	t := clamp(g.scale.PixelToTime(offsetPx), 0, g.transport.SceneDuration())
	g.transport.Seek(t)
	return t
}
