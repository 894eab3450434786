package session

import "sync"

// EventType discriminates preview channel messages.
type EventType string

const (
	// EventScrubTo tells the preview to render the frame at Time.
	EventScrubTo EventType = "scrub_to"
	// EventElementDragEnd reports a direct element reposition from the
	// preview, in offset-parent-relative percentages.
	EventElementDragEnd EventType = "element_drag_end"
	// EventCodeReplaced announces that the session's code was replaced
	// wholesale.
	EventCodeReplaced EventType = "code_replaced"
)

// Event is one message on the preview channel.
type Event struct {
	Type     EventType  `json:"type"`
	Time     float64    `json:"time,omitempty"`
	Selector string     `json:"selector,omitempty"`
	XPercent float64    `json:"x_percent,omitempty"`
	YPercent float64    `json:"y_percent,omitempty"`
	Code     *CodeState `json:"code,omitempty"`
}

// Bus is the one-way event channel between the editing session and its
// preview listeners. Publishing never blocks: a subscriber that is not
// draining its channel loses events rather than stalling the editor.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel function is
// idempotent and must be called when the listener goes away.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, 64)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish delivers an event to every live subscriber.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close terminates all subscriptions. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
