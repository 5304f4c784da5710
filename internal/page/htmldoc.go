package page

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

const (
	hiddenClass = "vigia-hidden"
	badgeClass  = "vigia-badge"
)

// HTMLDocument is a Document over a parsed HTML snapshot. Hiding and
// annotating mutate the tree in place, so a re-render of the document
// carries the applied marks.
type HTMLDocument struct {
	url  string
	root *html.Node
}

// ParseHTML reads an HTML snapshot and returns a scannable document.
func ParseHTML(url string, r io.Reader) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &HTMLDocument{url: url, root: root}, nil
}

// URL returns the address the snapshot was captured from.
func (d *HTMLDocument) URL() string { return d.url }

// FeedItems returns every element carrying an activity URN, either in a
// data-urn or a data-id attribute.
func (d *HTMLDocument) FeedItems() []Element {
	var items []Element
	walk(d.root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		for _, attr := range n.Attr {
			if (attr.Key == "data-urn" || attr.Key == "data-id") && strings.Contains(attr.Val, "activity") {
				items = append(items, &htmlElement{node: n})
				return
			}
		}
	})
	return items
}

// Conversations returns the chat list entries. The participant name is
// exposed through Text, taken from the avatar image alt.
func (d *HTMLDocument) Conversations() []Element {
	var items []Element
	walk(d.root, func(n *html.Node) {
		if isElementWithClass(n, "conversation-item") {
			items = append(items, &htmlElement{node: n, textFrom: avatarAlt})
		}
	})
	return items
}

// Notifications returns the notification rows.
func (d *HTMLDocument) Notifications() []Element {
	var items []Element
	walk(d.root, func(n *html.Node) {
		if isElementWithClass(n, "notification-item") {
			items = append(items, &htmlElement{node: n})
		}
	})
	return items
}

// htmlElement adapts an html.Node to the Element interface.
type htmlElement struct {
	node     *html.Node
	textFrom func(*html.Node) string
}

func (e *htmlElement) Attr(name string) (string, bool) {
	for _, attr := range e.node.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

func (e *htmlElement) Links() []string {
	var links []string
	walk(e.node, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "a" {
			return
		}
		for _, attr := range n.Attr {
			if attr.Key == "href" && attr.Val != "" {
				links = append(links, attr.Val)
			}
		}
	})
	return links
}

func (e *htmlElement) Text() string {
	if e.textFrom != nil {
		return e.textFrom(e.node)
	}
	var sb strings.Builder
	walk(e.node, func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

func (e *htmlElement) Hide() {
	if e.Hidden() {
		return
	}
	setAttr(e.node, "style", "display: none;")
	addClass(e.node, hiddenClass)
}

func (e *htmlElement) Annotate(label string) {
	badge := &html.Node{
		Type: html.ElementNode,
		Data: "span",
		Attr: []html.Attribute{{Key: "class", Val: badgeClass}},
	}
	badge.AppendChild(&html.Node{Type: html.TextNode, Data: label})
	e.node.AppendChild(badge)
}

func (e *htmlElement) Hidden() bool {
	return hasClass(e.node, hiddenClass)
}

// avatarAlt returns the alt text of the first image inside the node.
func avatarAlt(n *html.Node) string {
	var alt string
	walk(n, func(c *html.Node) {
		if alt != "" || c.Type != html.ElementNode || c.Data != "img" {
			return
		}
		for _, attr := range c.Attr {
			if attr.Key == "alt" {
				alt = attr.Val
				return
			}
		}
	})
	return alt
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func isElementWithClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" && containsClass(attr.Val, class) {
			return true
		}
	}
	return false
}

func containsClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	return isElementWithClass(n, class)
}

func addClass(n *html.Node, class string) {
	for i, attr := range n.Attr {
		if attr.Key == "class" {
			if !containsClass(attr.Val, class) {
				n.Attr[i].Val = attr.Val + " " + class
			}
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
