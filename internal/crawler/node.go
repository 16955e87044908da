package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Node is the read-only view of a parsed document fragment the extractor works on.
type Node interface {
	// FindAll returns matching descendants in document order.
	FindAll(selector string) []Node
	// Find returns the first matching descendant.
	Find(selector string) (Node, bool)
	// Text returns the trimmed text of every descendant text node, concatenated.
	Text() string
	Attr(name string) (string, bool)
}

// ParseDocument parses raw HTML into a Node rooted at the document.
func ParseDocument(content string) (Node, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &GoQueryNode{sel: goquery.NewDocumentFromNode(root).Selection}, nil
}

// GoQueryNode implements Node over a single-element goquery selection.
type GoQueryNode struct {
	sel *goquery.Selection
}

func (n *GoQueryNode) FindAll(selector string) []Node {
	found := n.sel.Find(selector)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &GoQueryNode{sel: s})
	})
	return nodes
}

func (n *GoQueryNode) Find(selector string) (Node, bool) {
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return &GoQueryNode{sel: found}, true
}

func (n *GoQueryNode) Text() string {
	var b strings.Builder
	for _, node := range n.sel.Nodes {
		collectText(node, &b)
	}
	return b.String()
}

func (n *GoQueryNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func collectText(node *html.Node, b *strings.Builder) {
	if node.Type == html.TextNode {
		b.WriteString(strings.TrimSpace(node.Data))
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}
}
