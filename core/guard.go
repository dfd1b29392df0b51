package core

import "sync/atomic"

// ReentrancyGuard is a non-blocking single-entry latch around the
// engine's mutating entry points. A nested call triggered from within an
// external collaborator callback fails immediately instead of queueing.
type ReentrancyGuard struct {
	entered atomic.Bool
}

func (g *ReentrancyGuard) Enter() error {
	if !g.entered.CompareAndSwap(false, true) {
		return ErrReentrancyBlocked
	}
	return nil
}

// Exit releases the guard. Deferred on every entry so the latch is freed
// on failure paths too.
func (g *ReentrancyGuard) Exit() {
	g.entered.Store(false)
}
