package apps

import (
	"fmt"
	"math"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/market"
	"github.com/Gaurav-Gosain/termdesk/internal/theme"
)

// Indicator periods.
const (
	smaPeriod = 20
	emaPeriod = 9
)

// Chart draws the feed's latest candles with SMA and EMA overlays. It only
// reads the series; the shell drives the feed.
type Chart struct {
	id      string
	feed    *market.Feed
	overlay bool
}

func NewChart(id string, env *Env) *Chart {
	return &Chart{id: id, feed: env.Feed, overlay: true}
}

func (c *Chart) Init() tea.Cmd { return nil }

func (c *Chart) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "i" {
		c.overlay = !c.overlay
	}
	return nil
}

func (c *Chart) View(width, height int) string {
	if c.feed == nil {
		return Fit(failed("market feed unavailable"), width, height)
	}
	candles := c.feed.Series().Candles()
	if len(candles) == 0 || height < 3 {
		return Fit(muted("waiting for prices..."), width, height)
	}

	closes := c.feed.Series().Closes()
	sma := market.SMA(closes, smaPeriod)
	ema := market.EMA(closes, emaPeriod)

	header := c.header(candles, sma, ema)
	plotH := height - 2

	// One column per candle, newest on the right.
	n := min(len(candles), width)
	candles = candles[len(candles)-n:]
	sma = sma[len(sma)-n:]
	ema = ema[len(ema)-n:]

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, k := range candles {
		lo = math.Min(lo, k.Low)
		hi = math.Max(hi, k.High)
	}
	if hi-lo < 1e-9 {
		hi = lo + 1
	}
	row := func(price float64) int {
		r := int(math.Round((hi - price) / (hi - lo) * float64(plotH-1)))
		return max(0, min(plotH-1, r))
	}

	grid := make([][]string, plotH)
	for r := range grid {
		grid[r] = make([]string, n)
		for col := range n {
			grid[r][col] = " "
		}
	}

	up := lipgloss.NewStyle().Foreground(theme.Up())
	down := lipgloss.NewStyle().Foreground(theme.Down())
	smaStyle := lipgloss.NewStyle().Foreground(theme.Accent())
	emaStyle := lipgloss.NewStyle().Foreground(theme.Muted())

	for col, k := range candles {
		style := up
		if k.Close < k.Open {
			style = down
		}
		bodyTop, bodyBot := row(math.Max(k.Open, k.Close)), row(math.Min(k.Open, k.Close))
		for r := row(k.High); r <= row(k.Low); r++ {
			if r >= bodyTop && r <= bodyBot {
				grid[r][col] = style.Render("█")
			} else {
				grid[r][col] = style.Render("│")
			}
		}
		if !c.overlay {
			continue
		}
		if v := sma[col]; !math.IsNaN(v) {
			grid[row(v)][col] = smaStyle.Render("•")
		}
		if v := ema[col]; !math.IsNaN(v) {
			grid[row(v)][col] = emaStyle.Render("∙")
		}
	}

	lines := []string{header}
	for _, r := range grid {
		lines = append(lines, strings.Join(r, ""))
	}
	lines = append(lines, muted(fmt.Sprintf("hi %.2f  lo %.2f  [i] overlays", hi, lo)))
	return Fit(strings.Join(lines, "\n"), width, height)
}

func (c *Chart) header(candles []market.Candle, sma, ema []float64) string {
	last := candles[len(candles)-1]
	first := candles[0]
	change := 0.0
	if first.Open != 0 {
		change = (last.Close - first.Open) / first.Open * 100
	}

	style := lipgloss.NewStyle().Foreground(theme.Up())
	if change < 0 {
		style = lipgloss.NewStyle().Foreground(theme.Down())
	}
	out := accent(c.feed.Symbol) + " " + fmt.Sprintf("%.2f ", last.Close) + style.Render(fmt.Sprintf("%+.2f%%", change))
	if v := sma[len(sma)-1]; !math.IsNaN(v) {
		out += muted(fmt.Sprintf("  SMA%d %.2f", smaPeriod, v))
	}
	if v := ema[len(ema)-1]; !math.IsNaN(v) {
		out += muted(fmt.Sprintf("  EMA%d %.2f", emaPeriod, v))
	}
	return out
}
