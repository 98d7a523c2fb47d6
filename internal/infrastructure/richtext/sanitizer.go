// Package richtext sanitizes job description HTML produced by the rich-text editor.
package richtext

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hireflow/backend/internal/domain/recruiting"
)

var allowedTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true,
	atom.Strong: true, atom.B: true, atom.Em: true, atom.I: true, atom.U: true, atom.S: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Blockquote: true,
	atom.A: true, atom.Span: true, atom.Code: true, atom.Pre: true,
}

// dropped together with everything inside them
var droppedTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Iframe: true, atom.Object: true,
	atom.Embed: true, atom.Noscript: true, atom.Template: true, atom.Svg: true, atom.Math: true,
}

// block elements separate words in the plain-text projection
var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Li: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.Div: true,
	atom.Ul: true, atom.Ol: true, atom.Tr: true, atom.Td: true, atom.Th: true,
}

var fontSizeRegex = regexp.MustCompile(`^\s*font-size\s*:\s*(\d{1,2})px\s*;?\s*$`)

const (
	minFontSize = 8
	maxFontSize = 72
)

// Sanitizer implements the description sanitizer used by the job service
type Sanitizer struct{}

// NewSanitizer creates a Sanitizer
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// SanitizeDescription cleans raw editor HTML into a job description
func (*Sanitizer) SanitizeDescription(raw string) recruiting.JobDescription {
	cleaned, text := Sanitize(raw)
	return recruiting.JobDescription{HTML: cleaned, Text: text}
}

// Sanitize returns the allow-listed HTML and its whitespace-collapsed text
func Sanitize(raw string) (string, string) {
	if strings.TrimSpace(raw) == "" {
		return "", ""
	}
	nodes, err := html.ParseFragment(strings.NewReader(raw), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		// the parser only fails on reader errors; keep the text without markup
		text := collapse(raw)
		return html.EscapeString(text), text
	}

	w := &writer{}
	for _, n := range nodes {
		w.node(n)
	}
	return strings.TrimSpace(w.html.String()), collapse(w.text.String())
}

// PlainText returns only the visible text of raw HTML
func PlainText(raw string) string {
	_, text := Sanitize(raw)
	return text
}

type writer struct {
	html strings.Builder
	text strings.Builder
}

func (w *writer) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.html.WriteString(html.EscapeString(n.Data))
		w.text.WriteString(n.Data)
	case html.ElementNode:
		w.element(n)
	case html.DocumentNode:
		w.children(n)
	}
	// comments and doctypes are dropped
}

func (w *writer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *writer) element(n *html.Node) {
	if droppedTags[n.DataAtom] {
		return
	}
	if blockTags[n.DataAtom] {
		w.text.WriteByte(' ')
		defer w.text.WriteByte(' ')
	}
	if !allowedTags[n.DataAtom] {
		w.children(n)
		return
	}

	attrs, keep := allowedAttrs(n)
	if !keep {
		w.children(n)
		return
	}

	w.html.WriteByte('<')
	w.html.WriteString(n.Data)
	for _, a := range attrs {
		w.html.WriteByte(' ')
		w.html.WriteString(a.Key)
		w.html.WriteString(`="`)
		w.html.WriteString(html.EscapeString(a.Val))
		w.html.WriteByte('"')
	}
	w.html.WriteByte('>')
	if n.DataAtom == atom.Br {
		return
	}
	w.children(n)
	w.html.WriteString("</")
	w.html.WriteString(n.Data)
	w.html.WriteByte('>')
}

// allowedAttrs filters attributes. keep is false when the element itself must
// be unwrapped, which happens to links without a safe href.
func allowedAttrs(n *html.Node) ([]html.Attribute, bool) {
	switch n.DataAtom {
	case atom.A:
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == "href" {
				if href, ok := safeHref(a.Val); ok {
					return []html.Attribute{
						{Key: "href", Val: href},
						{Key: "rel", Val: "noopener noreferrer"},
					}, true
				}
			}
		}
		return nil, false
	case atom.Span:
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == "style" {
				if style, ok := safeFontSize(a.Val); ok {
					return []html.Attribute{{Key: "style", Val: style}}, true
				}
			}
		}
		return nil, true
	default:
		return nil, true
	}
}

func safeHref(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return "", false
		}
		return u.String(), true
	case "mailto":
		if u.Opaque == "" {
			return "", false
		}
		return u.String(), true
	default:
		return "", false
	}
}

func safeFontSize(style string) (string, bool) {
	m := fontSizeRegex.FindStringSubmatch(strings.ToLower(style))
	if m == nil {
		return "", false
	}
	size, err := strconv.Atoi(m[1])
	if err != nil || size < minFontSize || size > maxFontSize {
		return "", false
	}
	return "font-size: " + m[1] + "px", true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
