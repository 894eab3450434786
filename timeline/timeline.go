// Package timeline is the view-model between pointer gestures and the CSS
// model: it maps track timing to pixel geometry and converts drag deltas
// back into delay/duration edits.
package timeline

import "motionedit/cssmodel"

// MinDuration is the resize floor in seconds; an animation may never reach
// zero or negative length.
const MinDuration = 0.1

// Scale converts between seconds and horizontal pixels.
type Scale struct {
	PixelsPerSecond float64
}

// TimeToPixel maps seconds to a pixel offset.
func (s Scale) TimeToPixel(seconds float64) float64 {
	return seconds * s.PixelsPerSecond
}

// PixelToTime maps a pixel offset back to seconds. A degenerate scale maps
// everything to 0 rather than dividing by zero.
func (s Scale) PixelToTime(px float64) float64 {
	if s.PixelsPerSecond <= 0 {
		return 0
	}
	return px / s.PixelsPerSecond
}

// Bar is the rendered geometry of one track at a given scale.
type Bar struct {
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// Bar lays out one track: delay positions the bar, duration sizes it.
func (s Scale) Bar(t cssmodel.Track) Bar {
	return Bar{
		X:     s.TimeToPixel(t.Delay),
		Width: s.TimeToPixel(t.Duration),
	}
}

// Layout computes bar geometry for a whole track list in source order.
func (s Scale) Layout(tracks []cssmodel.Track) []Bar {
	bars := make([]Bar, len(tracks))
	for i, t := range tracks {
		bars[i] = s.Bar(t)
	}
	return bars
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
