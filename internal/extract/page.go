package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type Page struct {
	Title string
	Text  string
}

// ParsePage extracts the <title> and the visible text of an HTML document. Text nodes are
// joined with single spaces so adjacent elements never glue an email to the next word.
func ParsePage(body string) Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Page{Text: strings.Join(strings.Fields(body), " ")}
	}

	var b strings.Builder
	for _, n := range doc.Nodes {
		visibleText(n, &b)
	}

	return Page{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  strings.Join(strings.Fields(b.String()), " "),
	}
}

func visibleText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(c, b)
	}
}
