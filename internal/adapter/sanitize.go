package adapter

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const maxDescriptionBytes = 256 << 10 // 256 KiB

// allowedElements are kept with their allowed attributes. Any other element
// is unwrapped: its children stay, the tag goes.
var allowedElements = map[string]map[string]bool{
	"a":      {"href": true},
	"br":     {},
	"b":      {},
	"i":      {},
	"em":     {},
	"strong": {},
	"p":      {},
	"span":   {},
	"ul":     {},
	"ol":     {},
	"li":     {},
}

// droppedElements are removed together with everything inside them.
var droppedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"frame":    true,
	"frameset": true,
	"object":   true,
	"embed":    true,
	"applet":   true,
	"form":     true,
	"button":   true,
	"input":    true,
	"select":   true,
	"textarea": true,
	"link":     true,
	"meta":     true,
	"base":     true,
	"svg":      true,
	"math":     true,
	"template": true,
	"noscript": true,
	"title":    true,
}

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
}

// SanitizeDescription turns mirror supplied description HTML into markup that
// is safe to embed in our pages. Newlines become <br>, only a small set of
// text elements survives and platform links are rewritten to local routes.
func SanitizeDescription(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	raw = truncate(raw, maxDescriptionBytes)
	raw = strings.ReplaceAll(raw, "\n", "<br>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	body := doc.Find("body")
	for _, n := range body.Nodes {
		cleanChildren(n)
	}

	body.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		rewritten, external, ok := rewriteLink(href)
		if !ok {
			s.RemoveAttr("href")
			return
		}
		s.SetAttr("href", rewritten)
		if external {
			s.SetAttr("rel", "noopener noreferrer")
			s.SetAttr("target", "_blank")
		}
	})

	out, err := body.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// cleanChildren applies the allowlist to the subtree below n. Children are
// cleaned before an element is unwrapped, so hoisted nodes are already safe.
func cleanChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.ElementNode:
			name := strings.ToLower(c.Data)
			attrs, allowed := allowedElements[name]
			switch {
			case c.Namespace != "" || droppedElements[name]:
				n.RemoveChild(c)
			case allowed:
				cleanChildren(c)
				c.Attr = keepAttrs(c.Attr, attrs)
			default:
				cleanChildren(c)
				unwrap(c)
			}
		case html.TextNode:
		default:
			n.RemoveChild(c)
		}
		c = next
	}
}

func keepAttrs(attrs []html.Attribute, allowed map[string]bool) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if a.Namespace != "" || !allowed[strings.ToLower(a.Key)] || isScriptURL(a.Val) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

func isScriptURL(raw string) bool {
	v := strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, strings.ToLower(raw))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") || strings.HasPrefix(v, "data:")
}

// rewriteLink maps an href to a local route or keeps it as an external link.
// ok is false when the link must be dropped.
func rewriteLink(href string) (rewritten string, external bool, ok bool) {
	href = strings.TrimSpace(href)
	if href == "" || isScriptURL(href) {
		return "", false, false
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false, false
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case u.Scheme == "" && host == "":
		return localRoute(u)
	case host == "youtu.be":
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return "", false, false
		}
		return "/watch?v=" + url.QueryEscape(id), false, true
	case youtubeHosts[host]:
		if local, _, ok := localRoute(u); ok {
			return local, false, true
		}
		return u.String(), true, true
	case u.Scheme == "http" || u.Scheme == "https":
		return u.String(), true, true
	default:
		return "", false, false
	}
}

// localRoute keeps only the routes this gateway serves.
func localRoute(u *url.URL) (string, bool, bool) {
	switch {
	case u.Path == "/watch":
		if v := u.Query().Get("v"); v != "" {
			return "/watch?v=" + url.QueryEscape(v), false, true
		}
	case strings.HasPrefix(u.Path, "/channel/"):
		id := strings.Trim(strings.TrimPrefix(u.Path, "/channel/"), "/")
		if id != "" && !strings.Contains(id, "/") {
			return "/channel/" + url.PathEscape(id), false, true
		}
	case u.Path == "/search" || u.Path == "/results":
		q := u.Query().Get("q")
		if q == "" {
			q = u.Query().Get("search_query")
		}
		if q != "" {
			return "/search?q=" + url.QueryEscape(q), false, true
		}
	}
	return "", false, false
}
