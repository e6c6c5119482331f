// internal/scraper/text.go
package scraper

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TextNodes returns the data of every text node below the selection, in
// document order. Unlike Selection.Text the nodes are kept apart, which is
// what the menu parser needs to tell fields from each other.
func TextNodes(sel *goquery.Selection) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			out = append(out, n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}
