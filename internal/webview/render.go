package webview

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is HTML flattened to text.
type Document struct {
	Title string
	Text  string
	Links []string
}

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Iframe:   true,
	atom.Head:     true,
}

var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Main: true,
	atom.Aside: true, atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Table: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Hr: true, atom.Form: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
}

type renderer struct {
	out     strings.Builder
	line    strings.Builder
	links   []string
	title   string
	preDeep int
}

// Render parses r as HTML and returns its readable text. Block elements
// start new lines, list items get a bullet, and links are numbered in
// document order with their targets collected in Links.
func Render(r io.Reader) (Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Document{}, err
	}

	var rd renderer
	rd.title = findTitle(root)
	rd.walk(root)
	rd.flush()

	text := strings.TrimSpace(collapseBlankLines(rd.out.String()))
	return Document{Title: rd.title, Text: text, Links: rd.links}, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.Join(strings.Fields(n.FirstChild.Data), " ")
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func (rd *renderer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		rd.text(n.Data)
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
	}

	isBlock := n.Type == html.ElementNode && blocks[n.DataAtom]
	if isBlock {
		rd.flush()
	}

	switch n.DataAtom {
	case atom.Br:
		rd.flush()
	case atom.Li:
		rd.line.WriteString("• ")
	case atom.Pre:
		rd.preDeep++
		defer func() { rd.preDeep-- }()
	case atom.H1, atom.H2, atom.H3:
		rd.out.WriteString("\n")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rd.walk(c)
	}

	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		if href := attr(n, "href"); href != "" && !strings.HasPrefix(href, "#") && !strings.HasPrefix(href, "javascript:") {
			rd.links = append(rd.links, href)
			fmt.Fprintf(&rd.line, "[%d]", len(rd.links))
		}
	}

	if isBlock {
		rd.flush()
	}
}

func (rd *renderer) text(s string) {
	if rd.preDeep > 0 {
		lines := strings.Split(s, "\n")
		for i, l := range lines {
			if i > 0 {
				rd.flush()
			}
			rd.line.WriteString(l)
		}
		return
	}

	cur := rd.line.String()
	words := strings.Fields(s)
	if len(words) == 0 {
		if s != "" && cur != "" && !strings.HasSuffix(cur, " ") {
			rd.line.WriteByte(' ')
		}
		return
	}
	if cur != "" && !strings.HasSuffix(cur, " ") && (s[0] == ' ' || s[0] == '\n' || s[0] == '\t') {
		rd.line.WriteByte(' ')
	}
	rd.line.WriteString(strings.Join(words, " "))
	if last := s[len(s)-1]; last == ' ' || last == '\n' || last == '\t' {
		rd.line.WriteByte(' ')
	}
}

func (rd *renderer) flush() {
	line := strings.TrimRight(rd.line.String(), " ")
	rd.line.Reset()
	if strings.TrimSpace(line) == "" {
		return
	}
	rd.out.WriteString(line)
	rd.out.WriteString("\n")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
