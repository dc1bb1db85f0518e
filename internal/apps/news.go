package apps

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/termdesk/internal/config"
)

// NewsMsg asks a news window for its next headline.
type NewsMsg struct {
	ID   string
	Time time.Time
}

func (m NewsMsg) WindowID() string { return m.ID }

const maxHeadlines = 50

var (
	newsSubjects = []string{
		"Analysts", "Hedge funds", "Retail traders", "The central bank", "Market makers",
		"A large pension fund", "Options desks", "Short sellers",
	}
	newsVerbs = []string{
		"turn bullish on", "trim exposure to", "pile into", "question the rally in",
		"hedge positions in", "double down on", "rotate out of",
	}
	newsTails = []string{
		"ahead of earnings", "after a surprise guidance cut", "as volumes spike",
		"on rate-cut hopes", "amid supply chain worries", "following an upgrade",
		"despite a weak macro print",
	}
)

// Headline is one simulated news item.
type Headline struct {
	Time time.Time
	Text string
}

// News produces simulated headlines on a fixed interval. It reads the feed
// for colour but never trades.
type News struct {
	id        string
	env       *Env
	rng       *rand.Rand
	interval  time.Duration
	headlines []Headline
	paused    bool
}

func NewNews(id string, env *Env) *News {
	seed := uint64(env.config().Market.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &News{
		id:       id,
		env:      env,
		rng:      rand.New(rand.NewPCG(seed, 0x6e657773)),
		interval: config.NewsInterval,
	}
}

func (n *News) Init() tea.Cmd {
	n.publish(n.env.now())
	return n.tick()
}

func (n *News) tick() tea.Cmd {
	id := n.id
	return tea.Tick(n.interval, func(t time.Time) tea.Msg {
		return NewsMsg{ID: id, Time: t}
	})
}

// Headlines returns the items, newest first.
func (n *News) Headlines() []Headline { return append([]Headline(nil), n.headlines...) }

func (n *News) symbol() string {
	if n.env.Feed != nil {
		return n.env.Feed.Symbol
	}
	return n.env.config().Market.Symbol
}

func (n *News) publish(at time.Time) {
	pick := func(s []string) string { return s[n.rng.IntN(len(s))] }
	text := fmt.Sprintf("%s %s %s %s", pick(newsSubjects), pick(newsVerbs), n.symbol(), pick(newsTails))
	if n.env.Feed != nil && n.env.Feed.Last() > 0 && n.rng.IntN(3) == 0 {
		text = fmt.Sprintf("%s trades at %.2f; %s", n.symbol(), n.env.Feed.Last(), pick(newsTails))
	}
	n.headlines = append([]Headline{{Time: at, Text: text}}, n.headlines...)
	if len(n.headlines) > maxHeadlines {
		n.headlines = n.headlines[:maxHeadlines]
	}
}

func (n *News) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NewsMsg:
		if !n.paused {
			n.publish(msg.Time)
		}
		return n.tick()
	case tea.KeyPressMsg:
		if msg.String() == "space" || msg.String() == "p" {
			n.paused = !n.paused
		}
	}
	return nil
}

func (n *News) View(width, height int) string {
	lines := make([]string, 0, len(n.headlines))
	for _, h := range n.headlines {
		lines = append(lines, muted(h.Time.Format(time.TimeOnly))+" "+h.Text)
	}
	hint := "space: pause"
	if n.paused {
		hint = "paused - space: resume"
	}
	return withFooter(strings.Join(lines, "\n"), muted(hint), width, height)
}
