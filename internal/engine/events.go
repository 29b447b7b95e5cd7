package engine

import (
	"time"

	"github.com/1broseidon/strata/internal/window"
)

type EventType string

const (
	EventMapped         EventType = "mapped"
	EventUnmapped       EventType = "unmapped"
	EventMoved          EventType = "moved"
	EventActivated      EventType = "activated"
	EventResized        EventType = "resized"
	EventOutputAdded    EventType = "output_added"
	EventOutputRemoved  EventType = "output_removed"
	EventFocusChanged   EventType = "focus_changed"
	EventConfigReloaded EventType = "config_reloaded"
)

// Event describes one state change. Workspace is -1 when the change was
// not tied to a workspace.
type Event struct {
	Type      EventType `json:"type"`
	Window    window.ID `json:"window,omitempty"`
	Workspace int       `json:"workspace"`
	Output    string    `json:"output,omitempty"`
	Target    string    `json:"target,omitempty"`
	Time      time.Time `json:"time"`
}

const defaultSubscriberBuffer = 64

// Subscribe registers for events. Slow subscribers lose events rather than
// block the engine. The returned cancel func closes the channel.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	ch := make(chan Event, buffer)

	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subMu.Unlock()

	cancel := func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		if c, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (e *Engine) publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			e.logger.Debug("dropping event for slow subscriber", "event", ev.Type)
		}
	}
}
