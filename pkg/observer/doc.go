// Package observer provides the registry-change fan-out.
//
// Observers (GUI redraw, sleep policy) subscribe once at startup and
// receive a bare signal, not a payload: they re-read whatever state
// they need afterward. Handlers run synchronously in registration
// order on the single mutating goroutine, so delivery is at least
// once per logical mutation with no ordering guarantee between
// independent observers.
package observer
