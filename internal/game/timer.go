package game

import "time"

// RoundTimer arms one-shot countdowns. onExpire runs at most once, on a
// goroutine of the timer's choosing. A cancel that races with expiry may lose;
// sessions tag every timer with its round so a late expiry is inert.
type RoundTimer interface {
	Start(d time.Duration, onExpire func()) (cancel func())
}
