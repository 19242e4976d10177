// internal/event/event.go
package event

import "sort"

// EventType — тип события
type EventType string

// Event — структура события
type Event struct {
	Type EventType
	Data interface{} // Данные события, если нужны
}

// Listener — интерфейс для подписчиков на события
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func(event Event)

func (f ListenerFunc) OnEvent(event Event) { f(event) }

// Priorities for SubscribeWithPriority. Higher runs first.
const (
	PriorityLow    = -10
	PriorityNormal = 0
	PriorityHigh   = 10
)

// Subscription is the handle returned by Subscribe. Its lifetime is owned by
// whoever subscribed; Unsubscribe must be called when that owner goes away.
type Subscription struct {
	d         *Dispatcher
	eventType EventType
	id        uint64
	priority  int
	listener  Listener
}

// Unsubscribe removes the listener. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.d == nil {
		return
	}
	s.d.remove(s)
	s.d = nil
}

// Dispatcher — диспетчер событий
type Dispatcher struct {
	listeners map[EventType][]*Subscription
	nextID    uint64
}

// NewDispatcher — создаёт новый диспетчер
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[EventType][]*Subscription),
	}
}

// Subscribe — подписка на событие
func (d *Dispatcher) Subscribe(eventType EventType, listener Listener) *Subscription {
	return d.SubscribeWithPriority(eventType, listener, PriorityNormal)
}

// SubscribeWithPriority registers a listener that runs before every listener
// of lower priority. Equal priorities keep subscription order.
func (d *Dispatcher) SubscribeWithPriority(eventType EventType, listener Listener, priority int) *Subscription {
	d.nextID++
	sub := &Subscription{
		d:         d,
		eventType: eventType,
		id:        d.nextID,
		priority:  priority,
		listener:  listener,
	}
	old := d.listeners[eventType]
	subs := make([]*Subscription, 0, len(old)+1)
	subs = append(subs, old...)
	subs = append(subs, sub)
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].priority > subs[j].priority
	})
	d.listeners[eventType] = subs
	return sub
}

func (d *Dispatcher) remove(sub *Subscription) {
	subs := d.listeners[sub.eventType]
	for i, s := range subs {
		if s.id == sub.id {
			// новый срез, чтобы не портить снимок текущей рассылки
			out := make([]*Subscription, 0, len(subs)-1)
			out = append(out, subs[:i]...)
			out = append(out, subs[i+1:]...)
			if len(out) == 0 {
				delete(d.listeners, sub.eventType)
			} else {
				d.listeners[sub.eventType] = out
			}
			return
		}
	}
}

// Dispatch — отправка события всем подписчикам.
// Listeners removed while the event is being delivered still see this event.
func (d *Dispatcher) Dispatch(event Event) {
	for _, sub := range d.listeners[event.Type] {
		sub.listener.OnEvent(event)
	}
}

// ListenerCount reports how many listeners are attached to eventType.
func (d *Dispatcher) ListenerCount(eventType EventType) int {
	return len(d.listeners[eventType])
}
