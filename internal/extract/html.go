package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// skipped subtrees never contribute article text
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"nav": true, "footer": true, "header": true, "aside": true,
	"form": true, "svg": true, "template": true,
}

// block elements end the current paragraph
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"article": true, "section": true, "blockquote": true, "pre": true,
}

// VisibleText returns the page title and its visible text, one paragraph
// per line
func VisibleText(htmlContent string) (string, string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", "", err
	}

	var title string
	var paragraphs []string
	var current strings.Builder

	flush := func() {
		p := strings.Join(strings.Fields(current.String()), " ")
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "title" {
				if n.FirstChild != nil && title == "" {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
			if skippedElements[n.Data] {
				return
			}
		}

		if n.Type == html.TextNode {
			current.WriteString(n.Data)
			current.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			flush()
		}
	}

	walk(doc)
	flush()

	return title, strings.Join(paragraphs, "\n"), nil
}
