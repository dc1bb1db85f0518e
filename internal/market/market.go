// Package market simulates a price feed for the desktop's trading apps.
// Prices follow a seeded random walk; nothing here resembles real market
// data.
package market

import (
	"iter"
	"math"
	"math/rand/v2"
	"time"
)

// Candle is one OHLC bar.
type Candle struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// GeneratorConfig configures a random walk.
type GeneratorConfig struct {
	Start      float64
	Volatility float64 // per-bar standard deviation as a fraction of price
	Interval   time.Duration
	Seed       uint64
	Epoch      time.Time
}

// minPrice keeps the walk strictly positive.
const minPrice = 0.01

// substeps per bar, used to derive high and low.
const substeps = 4

// Generator produces an endless candle sequence. It is consumed, not
// replayed: every candle handed out advances the walk for good.
type Generator struct {
	cfg   GeneratorConfig
	rng   *rand.Rand
	price float64
	at    time.Time
}

// NewGenerator returns a generator at cfg.Start.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.Start <= 0 {
		cfg.Start = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Epoch.IsZero() {
		cfg.Epoch = time.Now().Truncate(cfg.Interval)
	}
	return &Generator{
		cfg:   cfg,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		price: cfg.Start,
		at:    cfg.Epoch,
	}
}

// Next advances the walk by one bar.
func (g *Generator) Next() Candle {
	c := Candle{Time: g.at, Open: g.price, High: g.price, Low: g.price}

	sigma := g.cfg.Volatility / math.Sqrt(substeps)
	for range substeps {
		g.price = math.Max(minPrice, g.price*(1+g.rng.NormFloat64()*sigma))
		c.High = math.Max(c.High, g.price)
		c.Low = math.Min(c.Low, g.price)
	}
	c.Close = g.price
	g.at = g.at.Add(g.cfg.Interval)
	return c
}

// Candles returns the generator as a lazy infinite sequence. Ranging over it
// again continues where the previous range stopped.
func (g *Generator) Candles() iter.Seq[Candle] {
	return func(yield func(Candle) bool) {
		for {
			if !yield(g.Next()) {
				return
			}
		}
	}
}

// Series is a bounded window over the most recent candles.
type Series struct {
	limit   int
	candles []Candle
}

// NewSeries keeps at most limit candles.
func NewSeries(limit int) *Series {
	return &Series{limit: max(limit, 1)}
}

// Push appends c, dropping the oldest candle when full.
func (s *Series) Push(c Candle) {
	s.candles = append(s.candles, c)
	if over := len(s.candles) - s.limit; over > 0 {
		s.candles = append(s.candles[:0], s.candles[over:]...)
	}
}

func (s *Series) Len() int { return len(s.candles) }

// Candles returns a copy of the window, oldest first.
func (s *Series) Candles() []Candle {
	return append([]Candle(nil), s.candles...)
}

// Last returns the newest candle.
func (s *Series) Last() (Candle, bool) {
	if len(s.candles) == 0 {
		return Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// Closes returns the close prices, oldest first.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.Close
	}
	return out
}
