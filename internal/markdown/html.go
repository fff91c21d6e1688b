package markdown

import (
	"bytes"

	"golang.org/x/net/html"
)

// extractHTMLLinks parses raw HTML fragments collected from a Markdown page
// and returns a/img link targets.
func extractHTMLLinks(fragment []byte) []Link {
	doc, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return nil
	}

	links := make([]Link, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href := getAttr(n, "href"); href != "" {
					links = append(links, Link{Kind: LinkKindHTML, Destination: href})
				}
			case "img":
				if src := getAttr(n, "src"); src != "" {
					links = append(links, Link{Kind: LinkKindHTML, Destination: src})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
