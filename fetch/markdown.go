package fetch

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// strippedTags are removed outright wherever they appear (§4.4: "strip
// script/style/noscript/iframe/svg").
var strippedTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Iframe:   true,
	atom.Svg:      true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
}

// chromeClassPatterns match class/id substrings identifying navigation,
// sidebars, ads, cookie banners, and modals (§4.4).
var chromeClassPatterns = []string{
	"menu", "sidebar", "nav-", "navbar", "advert", "ads-", "cookie", "modal",
	"popup", "banner", "subscribe", "newsletter", "breadcrumb", "pagination",
	"social-share", "related-posts", "comments",
}

var chromeRoles = map[string]bool{
	"navigation": true,
	"banner":     true,
	"contentinfo": true,
}

// findContentRoot tries these candidates in order to find the conversion
// root (§4.4: "prefer the first of main, article, [role=main], .content,
// #content"), falling back to body.
func findContentRoot(doc *html.Node) *html.Node {
	var body *html.Node
	var main, article, roleMain, dotContent, hashContent *html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Body:
				if body == nil {
					body = n
				}
			case atom.Main:
				if main == nil {
					main = n
				}
			case atom.Article:
				if article == nil {
					article = n
				}
			}
			if roleMain == nil && attr(n, "role") == "main" {
				roleMain = n
			}
			if dotContent == nil && hasClass(n, "content") {
				dotContent = n
			}
			if hashContent == nil && attr(n, "id") == "content" {
				hashContent = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, candidate := range []*html.Node{main, article, roleMain, dotContent, hashContent} {
		if candidate != nil {
			return candidate
		}
	}
	return body
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, substr string) bool {
	return strings.Contains(strings.ToLower(attr(n, "class")), substr)
}

// isChrome reports whether n (or its class/id/role) matches one of the
// navigation/ad/cookie-banner/modal patterns stripped before conversion.
func isChrome(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if strippedTags[n.DataAtom] {
		return true
	}
	if chromeRoles[strings.ToLower(attr(n, "role"))] {
		return true
	}
	class := strings.ToLower(attr(n, "class"))
	id := strings.ToLower(attr(n, "id"))
	for _, pattern := range chromeClassPatterns {
		if strings.Contains(class, pattern) || strings.Contains(id, pattern) {
			return true
		}
	}
	return false
}

// HTMLToMarkdown parses raw HTML, strips script/style/chrome elements,
// selects a conversion root, and renders the remainder as markdown with
// ATX headings and fenced code blocks (§4.4). It also returns the
// document's <title>.
func HTMLToMarkdown(raw string) (markdown string, title string, err error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", "", err
	}
	title = extractTitle(doc)

	root := findContentRoot(doc)
	if root == nil {
		root = doc
	}

	var b strings.Builder
	renderNode(&b, root, 0)
	return strings.TrimSpace(collapseBlankLines(b.String())), title, nil
}

func extractTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Title && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}

var headingLevel = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// renderNode walks n and writes a markdown approximation to b. It is not
// a full CommonMark renderer — just enough structure (headings,
// paragraphs, lists, fenced code, links) to make extracted text legible
// to the downstream evaluator and extractor prompts.
func renderNode(b *strings.Builder, n *html.Node, listDepth int) {
	if isChrome(n) {
		return
	}

	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			b.WriteString(text)
			b.WriteString(" ")
		}
		return
	case html.ElementNode:
		if level, ok := headingLevel[n.DataAtom]; ok {
			b.WriteString("\n\n" + strings.Repeat("#", level) + " ")
			renderChildren(b, n, listDepth)
			b.WriteString("\n\n")
			return
		}
		switch n.DataAtom {
		case atom.P, atom.Div, atom.Section, atom.Article:
			b.WriteString("\n\n")
			renderChildren(b, n, listDepth)
			b.WriteString("\n\n")
			return
		case atom.Br:
			b.WriteString("\n")
			return
		case atom.Li:
			b.WriteString("\n" + strings.Repeat("  ", listDepth) + "- ")
			renderChildren(b, n, listDepth+1)
			return
		case atom.Ul, atom.Ol:
			b.WriteString("\n")
			renderChildren(b, n, listDepth)
			b.WriteString("\n")
			return
		case atom.Pre:
			b.WriteString("\n\n```\n")
			b.WriteString(extractText(n))
			b.WriteString("\n```\n\n")
			return
		case atom.Code:
			b.WriteString("`")
			renderChildren(b, n, listDepth)
			b.WriteString("`")
			return
		case atom.A:
			href := attr(n, "href")
			text := strings.TrimSpace(extractText(n))
			if text == "" {
				return
			}
			if href == "" {
				b.WriteString(text + " ")
				return
			}
			b.WriteString("[" + text + "](" + href + ") ")
			return
		}
	}

	renderChildren(b, n, listDepth)
}

func renderChildren(b *strings.Builder, n *html.Node, listDepth int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c, listDepth)
	}
}

func extractText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}
