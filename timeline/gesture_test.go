package timeline

import (
	"math"
	"testing"

	"motionedit/cssmodel"
)

type recordingSink struct {
	delays    map[string]float64
	durations map[string]float64
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		delays:    make(map[string]float64),
		durations: make(map[string]float64),
	}
}

func (s *recordingSink) SetTrackDelay(selector string, seconds float64) error {
	s.delays[selector] = seconds
	return nil
}

func (s *recordingSink) SetTrackDuration(selector string, seconds float64) error {
	s.durations[selector] = seconds
	return nil
}

type fakeTransport struct {
	paused   bool
	seeked   []float64
	duration float64
}

func (t *fakeTransport) Pause()                 { t.paused = true }
func (t *fakeTransport) Seek(seconds float64)   { t.seeked = append(t.seeked, seconds) }
func (t *fakeTransport) SceneDuration() float64 { return t.duration }

func TestScaleRoundTrip(t *testing.T) {
	s := Scale{PixelsPerSecond: 80}
	if got := s.TimeToPixel(2.5); got != 200 {
		t.Errorf("TimeToPixel = %v, want 200", got)
	}
	if got := s.PixelToTime(200); got != 2.5 {
		t.Errorf("PixelToTime = %v, want 2.5", got)
	}
	if got := (Scale{}).PixelToTime(100); got != 0 {
		t.Errorf("degenerate scale should map to 0, got %v", got)
	}
}

func TestScaleLayout(t *testing.T) {
	s := Scale{PixelsPerSecond: 100}
	bars := s.Layout([]cssmodel.Track{
		{Selector: ".a", Delay: 1, Duration: 2},
		{Selector: ".b", Delay: 0, Duration: 0.5},
	})
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].X != 100 || bars[0].Width != 200 {
		t.Errorf("bar 0 = %+v", bars[0])
	}
	if bars[1].X != 0 || bars[1].Width != 50 {
		t.Errorf("bar 1 = %+v", bars[1])
	}
}

func TestMoveGestureShiftsDelayLive(t *testing.T) {
	sink := newRecordingSink()
	scale := Scale{PixelsPerSecond: 100}
	g := NewMoveGesture(sink, scale, cssmodel.Track{Selector: ".a", Delay: 1, Duration: 2})

	delay, err := g.Update(50)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if delay != 1.5 {
		t.Errorf("delay = %v, want 1.5", delay)
	}
	if sink.delays[".a"] != 1.5 {
		t.Errorf("sink not updated mid-drag: %v", sink.delays)
	}

	// Deltas stay anchored to the gesture-start baseline.
	delay, _ = g.Update(100)
	if delay != 2 {
		t.Errorf("delay = %v, want 2 (baseline+1s, not cumulative)", delay)
	}
}

func TestMoveGestureNeverGoesNegative(t *testing.T) {
	sink := newRecordingSink()
	g := NewMoveGesture(sink, Scale{PixelsPerSecond: 100}, cssmodel.Track{Selector: ".a", Delay: 0.2, Duration: 1})

	delay, _ := g.Update(-10000)
	if delay != 0 {
		t.Errorf("delay = %v, want clamp at 0", delay)
	}
	if sink.delays[".a"] != 0 {
		t.Errorf("sink got negative delay: %v", sink.delays[".a"])
	}
}

func TestResizeGestureFloorsDuration(t *testing.T) {
	sink := newRecordingSink()
	g := NewResizeGesture(sink, Scale{PixelsPerSecond: 100}, cssmodel.Track{Selector: ".a", Duration: 2})

	dur, _ := g.Update(100)
	if dur != 3 {
		t.Errorf("duration = %v, want 3", dur)
	}

	dur, _ = g.Update(-10000)
	if math.Abs(dur-MinDuration) > 1e-9 {
		t.Errorf("duration = %v, want floor %v", dur, MinDuration)
	}
	if sink.durations[".a"] <= 0 {
		t.Errorf("sink got non-positive duration: %v", sink.durations[".a"])
	}
}

func TestGestureUpdateAfterEndIsInert(t *testing.T) {
	sink := newRecordingSink()
	g := NewMoveGesture(sink, Scale{PixelsPerSecond: 100}, cssmodel.Track{Selector: ".a", Delay: 1})
	g.End()
	if _, err := g.Update(500); err != nil {
		t.Fatalf("Update after End: %v", err)
	}
	if _, touched := sink.delays[".a"]; touched {
		t.Error("ended gesture still writes to the sink")
	}
}

func TestPlayheadGesturePausesAndClamps(t *testing.T) {
	tr := &fakeTransport{duration: 4}
	g := NewPlayheadGesture(tr, Scale{PixelsPerSecond: 100})
	if !tr.paused {
		t.Fatal("starting a playhead drag must pause playback")
	}

	if got := g.Update(250); got != 2.5 {
		t.Errorf("seek = %v, want 2.5", got)
	}
	if got := g.Update(100000); got != 4 {
		t.Errorf("seek = %v, want clamp at scene duration", got)
	}
	if got := g.Update(-50); got != 0 {
		t.Errorf("seek = %v, want clamp at 0", got)
	}
	if len(tr.seeked) != 3 {
		t.Errorf("expected 3 seeks, got %v", tr.seeked)
	}
}
