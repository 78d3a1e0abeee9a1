package domain

import "github.com/jonboulle/clockwork"

// clock stamps Bulletin.GeneratedAt. Tests and fixture generators freeze it
// via SetClock before any concurrent use.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for bulletin timestamps. Pass nil to
// reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
