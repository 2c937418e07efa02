package recipe

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// section returns the entries under the first heading whose text contains one
// of keywords, up to the next heading of any level. List items are preferred;
// without them the section text is split into lines.
func section(root *html.Node, keywords []string) []string {
	if root == nil {
		return nil
	}
	w := &sectionWalker{keywords: keywords}
	w.walk(root)

	if len(w.items) > 0 {
		return w.items
	}
	var lines []string
	for _, line := range strings.Split(w.text.String(), "\n") {
		if line = collapseSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

type walkState int

const (
	searching walkState = iota
	capturing
	done
)

type sectionWalker struct {
	keywords []string
	state    walkState
	items    []string
	text     strings.Builder
}

func (w *sectionWalker) walk(n *html.Node) {
	if w.state == done {
		return
	}

	if n.Type == html.ElementNode {
		if skipped(n) {
			return
		}
		if isHeading(n) {
			switch {
			case w.state == capturing:
				w.state = done
			case w.matches(textContent(n)):
				w.state = capturing
			}
			return
		}
		if w.state == capturing {
			if n.DataAtom == atom.Li {
				if item := collapseSpace(textContent(n)); item != "" {
					w.items = append(w.items, item)
				}
				w.text.WriteString(textContent(n))
				w.text.WriteByte('\n')
				return
			}
			if breaksLine(n) {
				w.text.WriteByte('\n')
			}
		}
	}

	if n.Type == html.TextNode && w.state == capturing {
		w.text.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if n.Type == html.ElementNode && w.state == capturing && breaksLine(n) {
		w.text.WriteByte('\n')
	}
}

func (w *sectionWalker) matches(heading string) bool {
	heading = strings.ToLower(heading)
	for _, kw := range w.keywords {
		if strings.Contains(heading, kw) {
			return true
		}
	}
	return false
}

func isHeading(n *html.Node) bool {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func skipped(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

func breaksLine(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Br, atom.P, atom.Div, atom.Ul, atom.Ol, atom.Tr, atom.Section, atom.Article, atom.Blockquote:
		return true
	}
	return false
}

// textContent concatenates the text below n, skipping scripts and styles.
func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(cur *html.Node) {
		if cur.Type == html.ElementNode && skipped(cur) {
			return
		}
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		if cur.Type == html.ElementNode && cur.DataAtom == atom.Br {
			b.WriteByte(' ')
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}
