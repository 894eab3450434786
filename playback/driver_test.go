package playback

import (
	"strings"
	"sync"
	"testing"

	"motionedit/cssmodel"
)

func fixedDuration(seconds float64) func() float64 {
	return func() float64 { return seconds }
}

func TestDriverStepClampsAndStopsOnce(t *testing.T) {
	d := NewDriver(fixedDuration(2), 0)

	var mu sync.Mutex
	stops := 0
	d.OnUpdate = func(s State) {
		mu.Lock()
		defer mu.Unlock()
		if !s.IsPlaying && s.CurrentTime == 2 {
			stops++
		}
	}

	d.mu.Lock()
	d.playing = true
	d.mu.Unlock()

	if cont := d.step(1.5); !cont {
		t.Fatal("playback stopped before the scene end")
	}
	if s := d.State(); s.CurrentTime != 1.5 || !s.IsPlaying {
		t.Fatalf("unexpected state mid-play: %+v", s)
	}

	if cont := d.step(1.0); cont {
		t.Fatal("playback should stop at the scene end")
	}
	s := d.State()
	if s.CurrentTime != 2 || s.IsPlaying {
		t.Fatalf("expected clamp at 2 and paused, got %+v", s)
	}

	// Further steps are inert: the stop edge fires exactly once per run.
	if cont := d.step(1.0); cont {
		t.Fatal("stopped driver kept running")
	}
	mu.Lock()
	defer mu.Unlock()
	if stops != 1 {
		t.Fatalf("stop edge observed %d times, want 1", stops)
	}
}

func TestDriverSeekClamps(t *testing.T) {
	d := NewDriver(fixedDuration(3), 0)

	d.Seek(10)
	if s := d.State(); s.CurrentTime != 3 {
		t.Errorf("seek past end = %v, want 3", s.CurrentTime)
	}
	d.Seek(-1)
	if s := d.State(); s.CurrentTime != 0 {
		t.Errorf("seek before start = %v, want 0", s.CurrentTime)
	}
	d.Seek(1.25)
	if s := d.State(); s.CurrentTime != 1.25 {
		t.Errorf("seek = %v, want 1.25", s.CurrentTime)
	}
}

func TestDriverPlayIsSingleTicker(t *testing.T) {
	d := NewDriver(fixedDuration(1000), 0)
	defer d.Close()

	d.Play()
	d.mu.Lock()
	first := d.stop
	d.mu.Unlock()
	if first == nil {
		t.Fatal("no ticker after Play")
	}

	d.Play() // no-op while playing
	d.mu.Lock()
	second := d.stop
	d.mu.Unlock()
	if first != second {
		t.Fatal("second Play replaced the ticker")
	}
}

func TestDriverPlayFromEndRewinds(t *testing.T) {
	d := NewDriver(fixedDuration(2), 0)
	defer d.Close()

	d.Seek(2)
	d.Play()
	if s := d.State(); !s.IsPlaying || s.CurrentTime != 0 {
		t.Fatalf("play at end should rewind and play, got %+v", s)
	}
}

func TestDriverPauseAndCloseIdempotent(t *testing.T) {
	d := NewDriver(fixedDuration(5), 0)

	d.Play()
	d.Pause()
	d.Pause()
	if s := d.State(); s.IsPlaying {
		t.Fatalf("still playing after pause: %+v", s)
	}

	d.Close()
	d.Close()
	d.Play()
	if s := d.State(); s.IsPlaying {
		t.Fatal("closed driver accepted Play")
	}
}

func TestScrubCSS(t *testing.T) {
	tracks := []cssmodel.Track{
		{Selector: ".a", Name: "slide", Duration: 2, Delay: 1},
		{Selector: "#b", Name: "fade", Duration: 1, Delay: 0},
	}
	css := ScrubCSS(tracks, 1.5)

	if !strings.Contains(css, ".a {\n  animation-delay: -0.50s !important;") {
		t.Errorf("wrong .a override:\n%s", css)
	}
	if !strings.Contains(css, "#b {\n  animation-delay: -1.50s !important;") {
		t.Errorf("wrong #b override:\n%s", css)
	}
	if strings.Count(css, "animation-play-state: paused !important;") != 2 {
		t.Errorf("every animated selector must be paused:\n%s", css)
	}

	if got := ScrubCSS(nil, 1); got != "" {
		t.Errorf("no tracks should produce no override, got %q", got)
	}
}

func TestScrubCSSBeforeTrackStart(t *testing.T) {
	css := ScrubCSS([]cssmodel.Track{{Selector: ".late", Duration: 1, Delay: 3}}, 1)
	if !strings.Contains(css, "animation-delay: 2.00s") {
		t.Errorf("positive remaining delay expected:\n%s", css)
	}
}
