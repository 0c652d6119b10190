// Package events implements a synchronous publish/subscribe bus. Emit calls
// every handler in the caller's stack; handlers that emit again are fully
// processed before the outer Emit returns.
package events

// Canonical event names.
const (
	BoardEnter     = "board:enter"
	PlayerMove     = "player:move"
	EntityInteract = "entity:interact"
	EntityDefeat   = "entity:defeat"
	ItemPickup     = "item:pickup"
	ItemUse        = "item:use"
	LeverToggle    = "lever:toggle"
	FlagChanged    = "flag:changed"
	QuestStart     = "quest:start"
	QuestAdvance   = "quest:advance"
	QuestComplete  = "quest:complete"
)

// Any is the pseudo event name used by OnAny subscriptions.
const Any = "*"

// Handler receives an event payload. The map must not be retained across
// emissions that reuse it.
type Handler func(data map[string]any)

// AnyHandler receives every event with its name.
type AnyHandler func(event string, data map[string]any)

type subscriber struct {
	id    int
	fn    Handler
	any   AnyHandler
	once  bool
	fired bool
}

// Subscription identifies one registered handler.
type Subscription struct {
	ID    int
	Event string
	bus   *Bus
}

// Unsubscribe removes the handler. Calling it more than once is harmless.
func (s Subscription) Unsubscribe() {
	if s.bus != nil {
		s.bus.Off(s)
	}
}

// Bus is the event bus. It is not safe for concurrent use; one goroutine
// must own it.
type Bus struct {
	subs   map[string][]*subscriber
	nextID int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[string][]*subscriber{}}
}

// On registers fn for event.
func (b *Bus) On(event string, fn Handler) Subscription {
	return b.add(event, &subscriber{fn: fn})
}

// Once registers fn for the next emission of event only.
func (b *Bus) Once(event string, fn Handler) Subscription {
	return b.add(event, &subscriber{fn: fn, once: true})
}

// OnAny registers fn for every event. OnAny handlers run before the
// event's own handlers, so they observe nested emissions in the order
// they were emitted.
func (b *Bus) OnAny(fn AnyHandler) Subscription {
	return b.add(Any, &subscriber{any: fn})
}

func (b *Bus) add(event string, s *subscriber) Subscription {
	b.nextID++
	s.id = b.nextID
	b.subs[event] = append(b.subs[event], s)
	return Subscription{ID: s.id, Event: event, bus: b}
}

// Off removes the handler behind sub.
func (b *Bus) Off(sub Subscription) {
	list := b.subs[sub.Event]
	for i, s := range list {
		if s.id != sub.ID {
			continue
		}
		next := make([]*subscriber, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, sub.Event)
		} else {
			b.subs[sub.Event] = next
		}
		return
	}
}

// Emit calls the handlers registered for event. The set of handlers is
// fixed when Emit starts: handlers added during dispatch wait for the next
// emission, and handlers removed during dispatch still run this once.
// Emitting an event nobody listens to, or the Any pseudo name, does nothing.
func (b *Bus) Emit(event string, data map[string]any) {
	if event == Any {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	for _, s := range snapshot(b.subs[Any]) {
		s.any(event, data)
	}
	for _, s := range snapshot(b.subs[event]) {
		if s.once {
			if s.fired {
				continue
			}
			s.fired = true
			b.Off(Subscription{ID: s.id, Event: event})
		}
		s.fn(data)
	}
}

func snapshot(list []*subscriber) []*subscriber {
	if len(list) == 0 {
		return nil
	}
	out := make([]*subscriber, len(list))
	copy(out, list)
	return out
}

// Clear removes the handlers of the named events, or of every event when
// called with no names.
func (b *Bus) Clear(events ...string) {
	if len(events) == 0 {
		b.subs = map[string][]*subscriber{}
		return
	}
	for _, e := range events {
		delete(b.subs, e)
	}
}

// ListenerCount returns the number of handlers registered for event.
func (b *Bus) ListenerCount(event string) int {
	return len(b.subs[event])
}
