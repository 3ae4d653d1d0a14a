package audio

import "sync/atomic"

// Player serializes playback with a single in-flight flag, not a queue:
// a play attempt while one is in flight is dropped.
type Player struct {
	inFlight atomic.Bool
}

// TryStart claims the playback slot. It returns false when playback is
// already in flight; the caller must drop the request.
func (p *Player) TryStart() bool {
	return p.inFlight.CompareAndSwap(false, true)
}

// Done releases the playback slot.
func (p *Player) Done() {
	p.inFlight.Store(false)
}

// Playing reports whether playback is in flight.
func (p *Player) Playing() bool {
	return p.inFlight.Load()
}
