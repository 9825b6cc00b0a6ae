package notice

// Event is implemented by every value delivered through an [EventNoticer].
// Implementations embed [EventBase].
type Event interface {
	Base() *EventBase
}

// EventBase carries the delivery state common to all events.
//
// Thread Safety:
// EventBase is NOT safe for concurrent access. An event should only be used
// from the goroutine that triggers it.
type EventBase struct {
	// Data is an arbitrary payload, supplied by the raiser.
	Data any

	noticer *EventNoticer
	sender  any
	origin  any

	// ReturnValue may be modified by listeners to report a result back to the
	// raiser, e.g. the process exit code.
	ReturnValue int
}

// NewEvent returns an event carrying data, with a zero ReturnValue.
func NewEvent(data any) *EventBase {
	return &EventBase{Data: data}
}

// Base implements [Event].
func (e *EventBase) Base() *EventBase { return e }

// Noticer returns the noticer currently delivering the event.
func (e *EventBase) Noticer() *EventNoticer { return e.noticer }

// Name returns the name of the noticer currently delivering the event.
func (e *EventBase) Name() string {
	if e.noticer == nil {
		return ``
	}
	return e.noticer.name
}

// Sender returns the sender of the noticer currently delivering the event.
func (e *EventBase) Sender() any { return e.sender }

// Origin returns the sender of the first noticer that delivered the event,
// which differs from Sender when the event was forwarded through a shell.
func (e *EventBase) Origin() any { return e.origin }

// SetOrigin overrides the origin, which is otherwise set by the first
// Trigger. Raisers that deliver a single event through several noticers
// (e.g. bubbling) set it up front.
func (e *EventBase) SetOrigin(origin any) { e.origin = origin }
