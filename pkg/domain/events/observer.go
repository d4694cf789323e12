package events

// Observer receives the events published by the forecasting, demand and
// restock components. Implementations must be safe for concurrent use and
// must not block for long: components call Observe inline.
type Observer interface {
	Observe(event Event)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(event Event)

func (f ObserverFunc) Observe(event Event) {
	f(event)
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// Nop returns an observer that discards every event
func Nop() Observer {
	return nopObserver{}
}

// OrNop returns o, or the discarding observer when o is nil
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop()
	}
	return o
}

// Multi fans every event out to each non-nil observer in order
func Multi(observers ...Observer) Observer {
	filtered := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	return multiObserver(filtered)
}

type multiObserver []Observer

func (m multiObserver) Observe(event Event) {
	for _, o := range m {
		o.Observe(event)
	}
}
