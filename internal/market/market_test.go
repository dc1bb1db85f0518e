package market

import (
	"math"
	"testing"
	"time"
)

func testGenerator(seed uint64) *Generator {
	return NewGenerator(GeneratorConfig{
		Start:      100,
		Volatility: 0.01,
		Interval:   time.Second,
		Seed:       seed,
		Epoch:      time.Unix(0, 0),
	})
}

func TestGenerator_CandlesAreConsistent(t *testing.T) {
	g := testGenerator(1)
	var prev Candle
	i := 0
	for c := range g.Candles() {
		if c.High < math.Max(c.Open, c.Close) || c.Low > math.Min(c.Open, c.Close) {
			t.Fatalf("candle %d has inconsistent range: %+v", i, c)
		}
		if c.Low <= 0 {
			t.Fatalf("candle %d non-positive low %v", i, c.Low)
		}
		if i > 0 {
			if c.Open != prev.Close {
				t.Fatalf("candle %d open %v does not continue close %v", i, c.Open, prev.Close)
			}
			if !c.Time.Equal(prev.Time.Add(time.Second)) {
				t.Fatalf("candle %d time %v, want %v", i, c.Time, prev.Time.Add(time.Second))
			}
		}
		prev = c
		i++
		if i == 500 {
			break
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a, b := testGenerator(42), testGenerator(42)
	for i := 0; i < 50; i++ {
		if ca, cb := a.Next(), b.Next(); ca != cb {
			t.Fatalf("candle %d differs: %+v vs %+v", i, ca, cb)
		}
	}
}

func TestGenerator_NotRestartable(t *testing.T) {
	g := testGenerator(7)
	var first Candle
	for c := range g.Candles() {
		first = c
		break
	}
	var second Candle
	for c := range g.Candles() {
		second = c
		break
	}
	if !second.Time.After(first.Time) {
		t.Errorf("second range replayed the sequence: %v then %v", first.Time, second.Time)
	}
}

func TestSeries_Bounded(t *testing.T) {
	s := NewSeries(3)
	for i := 1; i <= 5; i++ {
		s.Push(Candle{Close: float64(i)})
	}
	got := s.Closes()
	want := []float64{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
	if last, _ := s.Last(); last.Close != 5 {
		t.Errorf("last = %v", last.Close)
	}
}

func TestFeed_UpdatePushesAndReschedules(t *testing.T) {
	f := NewFeed("TDX", testGenerator(3), time.Millisecond, 10)
	defer f.Stop()
	f.Prime(4)
	if f.Series().Len() != 4 {
		t.Fatalf("expected 4 primed candles, got %d", f.Series().Len())
	}

	cmd := f.Update(TickMsg{Candle: Candle{Close: 123}})
	if cmd == nil {
		t.Error("expected the next tick to be scheduled")
	}
	if f.Last() != 123 {
		t.Errorf("expected last close 123, got %v", f.Last())
	}
	if f.Update("not a tick") != nil {
		t.Error("unrelated messages must not schedule ticks")
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Errorf("expected leading NaN, got %v", got)
	}
	for i, want := range map[int]float64{2: 2, 3: 3, 4: 4} {
		if !approx(got[i], want) {
			t.Errorf("SMA[%d] = %v, want %v", i, got[i], want)
		}
	}
	for _, v := range SMA([]float64{1, 2}, 3) {
		if !math.IsNaN(v) {
			t.Error("short input should be all NaN")
		}
	}
}

func TestEMA(t *testing.T) {
	values := []float64{2, 4, 6, 8}
	got := EMA(values, 3)
	if !math.IsNaN(got[1]) {
		t.Errorf("expected NaN before seed, got %v", got[1])
	}
	if !approx(got[2], 4) {
		t.Errorf("seed = %v, want 4", got[2])
	}
	// k = 0.5: (8-4)*0.5 + 4
	if !approx(got[3], 6) {
		t.Errorf("EMA[3] = %v, want 6", got[3])
	}
	if len(EMA(nil, 3)) != 0 {
		t.Error("expected empty output for empty input")
	}
}
