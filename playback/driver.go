// Package playback advances the preview clock. A driver owns one session's
// playback state: current time clamped to the scene, a single cancellable
// ticker goroutine while playing, and scrub-override CSS generation.
package playback

import (
	"sync"
	"time"
)

const defaultTick = 33 * time.Millisecond

// State is a snapshot of the playback clock.
type State struct {
	CurrentTime float64 `json:"current_time"`
	IsPlaying   bool    `json:"is_playing"`
}

// Driver drives current time forward while playing. Scene duration is read
// through a callback so timeline edits mid-playback take effect on the next
// tick. OnUpdate, when set, is invoked after every state change without the
// driver lock held.
type Driver struct {
	duration func() float64
	tick     time.Duration

	// OnUpdate observes state changes; set before first use.
	OnUpdate func(State)

	mu      sync.Mutex
	current float64
	playing bool
	closed  bool
	stop    chan struct{} // non-nil only while the ticker goroutine runs
}

// NewDriver creates a stopped driver at time zero.
func NewDriver(duration func() float64, tick time.Duration) *Driver {
	if tick <= 0 {
		tick = defaultTick
	}
	return &Driver{duration: duration, tick: tick}
}

// State returns the current clock snapshot.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{CurrentTime: d.current, IsPlaying: d.playing}
}

// Play starts advancing time. Calling it while already playing is a no-op,
// never a second ticker. Playing from the end rewinds to zero first: scenes
// are authored to play exactly once, so play-at-end means "play again".
func (d *Driver) Play() {
	d.mu.Lock()
	if d.closed || d.playing {
		d.mu.Unlock()
		return
	}
	if d.current >= d.duration() {
		d.current = 0
	}
	d.playing = true
	stop := make(chan struct{})
	d.stop = stop
	d.mu.Unlock()

	d.notify()
	go d.loop(stop)
}

// Pause halts playback at the current time. Safe to call at any moment,
// including when already paused.
func (d *Driver) Pause() {
	d.mu.Lock()
	changed := d.playing
	d.playing = false
	d.cancelLocked()
	d.mu.Unlock()
	if changed {
		d.notify()
	}
}

// Toggle flips between playing and paused.
func (d *Driver) Toggle() {
	d.mu.Lock()
	playing := d.playing
	d.mu.Unlock()
	if playing {
		d.Pause()
	} else {
		d.Play()
	}
}

// Seek moves the clock to the given time, clamped to [0, sceneDuration].
func (d *Driver) Seek(seconds float64) {
	d.mu.Lock()
	max := d.duration()
	if seconds < 0 {
		seconds = 0
	}
	if seconds > max {
		seconds = max
	}
	d.current = seconds
	d.mu.Unlock()
	d.notify()
}

// SceneDuration reports the duration callback's current value.
func (d *Driver) SceneDuration() float64 {
	return d.duration()
}

// Close stops playback permanently. It is unconditional and idempotent; a
// closed driver ignores Play.
func (d *Driver) Close() {
	d.mu.Lock()
	d.closed = true
	d.playing = false
	d.cancelLocked()
	d.mu.Unlock()
}

// loop is the per-frame callback: each tick adds elapsed wall-clock time.
func (d *Driver) loop(stop chan struct{}) {
	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last).Seconds()
			last = now
			if !d.step(elapsed) {
				return
			}
		}
	}
}

// step advances the clock by elapsed seconds and reports whether playback
// continues. Reaching the scene end clamps and flips playing exactly once.
func (d *Driver) step(elapsed float64) bool {
	d.mu.Lock()
	if !d.playing {
		d.mu.Unlock()
		return false
	}
	d.current += elapsed
	max := d.duration()
	finished := d.current >= max
	if finished {
		d.current = max
		d.playing = false
		d.cancelLocked()
	}
	d.mu.Unlock()

	d.notify()
	return !finished
}

// cancelLocked tears down the ticker goroutine. Caller holds d.mu.
func (d *Driver) cancelLocked() {
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
}

func (d *Driver) notify() {
	if d.OnUpdate == nil {
		return
	}
	d.OnUpdate(d.State())
}
