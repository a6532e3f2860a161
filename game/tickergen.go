package game

import "time"

// PeriodicTickerChannelCreator abstracts time.Ticker so tests can drive the
// timer loop with a plain channel.
type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

type ticker struct{}

func (t *ticker) Create(duration time.Duration) <-chan time.Time {
	return time.NewTicker(duration).C
}

func NewTickerGen() ticker {
	return ticker{}
}
