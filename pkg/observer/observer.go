package observer

// Handler receives a change signal. It must re-read registry state
// itself; no payload is delivered.
type Handler func()

// CountFunc reports the current registry record count, used to
// suppress redundant non-forced notifications.
type CountFunc func() int

// Notifier fans registry-change signals out to a fixed set of
// handlers. Subscribe during startup, Notify only from the mutating
// goroutine.
type Notifier struct {
	handlers []Handler
	count    CountFunc

	lastCount int
	delivered bool
}

// NewNotifier creates a notifier that gates non-forced signals on the
// given count function. A nil count disables gating (every Notify
// delivers).
func NewNotifier(count CountFunc) *Notifier {
	return &Notifier{count: count}
}

// Subscribe registers a handler. Handlers are invoked synchronously
// in registration order.
func (n *Notifier) Subscribe(h Handler) {
	n.handlers = append(n.handlers, h)
}

// Notify delivers the change signal. When force is false the signal
// is suppressed if the registry count is unchanged since the last
// delivery; mutations that are always worth a redraw pass force.
func (n *Notifier) Notify(force bool) {
	if !force && n.count != nil {
		c := n.count()
		if n.delivered && c == n.lastCount {
			return
		}
	}
	if n.count != nil {
		n.lastCount = n.count()
	}
	n.delivered = true
	for _, h := range n.handlers {
		h()
	}
}
