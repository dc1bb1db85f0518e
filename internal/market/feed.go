package market

import (
	"iter"
	"time"

	tea "charm.land/bubbletea/v2"
)

// TickMsg carries the next candle from a Feed.
type TickMsg struct {
	Candle Candle
}

// Feed pushes candles from a generator on a fixed interval and keeps the
// latest window in a Series. Only one tick is ever outstanding, so the
// underlying sequence is pulled from one goroutine at a time.
type Feed struct {
	Symbol   string
	interval time.Duration
	series   *Series
	next     func() (Candle, bool)
	stop     func()
}

// NewFeed wraps g. The series keeps at most limit candles.
func NewFeed(symbol string, g *Generator, interval time.Duration, limit int) *Feed {
	next, stop := iter.Pull(g.Candles())
	return &Feed{
		Symbol:   symbol,
		interval: interval,
		series:   NewSeries(limit),
		next:     next,
		stop:     stop,
	}
}

// Prime fills the series with n candles without waiting.
func (f *Feed) Prime(n int) {
	for range n {
		c, ok := f.next()
		if !ok {
			return
		}
		f.series.Push(c)
	}
}

// Series returns the materialized window.
func (f *Feed) Series() *Series { return f.series }

// Last returns the latest close, or 0 before the first candle.
func (f *Feed) Last() float64 {
	c, ok := f.series.Last()
	if !ok {
		return 0
	}
	return c.Close
}

// Tick schedules the next candle.
func (f *Feed) Tick() tea.Cmd {
	return tea.Tick(f.interval, func(time.Time) tea.Msg {
		c, ok := f.next()
		if !ok {
			return nil
		}
		return TickMsg{Candle: c}
	})
}

// Update records a TickMsg and schedules the following one.
func (f *Feed) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(TickMsg)
	if !ok {
		return nil
	}
	f.series.Push(tick.Candle)
	return f.Tick()
}

// Stop releases the pull iterator.
func (f *Feed) Stop() { f.stop() }
