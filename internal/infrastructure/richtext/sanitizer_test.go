package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantHTML string
		wantText string
	}{
		{
			name:     "allowed markup is kept",
			input:    "<h2>Role</h2><p>Build <strong>APIs</strong> in <em>Go</em></p><ul><li>gin</li><li>gorm</li></ul>",
			wantHTML: "<h2>Role</h2><p>Build <strong>APIs</strong> in <em>Go</em></p><ul><li>gin</li><li>gorm</li></ul>",
			wantText: "Role Build APIs in Go gin gorm",
		},
		{
			name:     "script and style are dropped with content",
			input:    `<p>Hi</p><script>alert(1)</script><style>p{color:red}</style>`,
			wantHTML: "<p>Hi</p>",
			wantText: "Hi",
		},
		{
			name:     "iframe and object are dropped",
			input:    `<iframe src="https://evil.test"></iframe><object data="x.swf">fallback</object>ok`,
			wantHTML: "ok",
			wantText: "ok",
		},
		{
			name:     "unknown tags are unwrapped",
			input:    `<div><font color="red">Red</font> text</div>`,
			wantHTML: "Red text",
			wantText: "Red text",
		},
		{
			name:     "attributes outside the allow-list are removed",
			input:    `<p class="lead" onclick="steal()">t</p>`,
			wantHTML: "<p>t</p>",
			wantText: "t",
		},
		{
			name:     "links get a forced rel",
			input:    `<a href="https://acme.test/jobs?a=1&b=2" target="_blank" rel="opener">apply</a>`,
			wantHTML: `<a href="https://acme.test/jobs?a=1&amp;b=2" rel="noopener noreferrer">apply</a>`,
			wantText: "apply",
		},
		{
			name:     "mailto links are allowed",
			input:    `<a href="mailto:jobs@acme.test">mail us</a>`,
			wantHTML: `<a href="mailto:jobs@acme.test" rel="noopener noreferrer">mail us</a>`,
			wantText: "mail us",
		},
		{
			name:     "javascript links are unwrapped",
			input:    `<a href="javascript:alert(1)">click</a>`,
			wantHTML: "click",
			wantText: "click",
		},
		{
			name:     "relative links are unwrapped",
			input:    `<a href="/internal">x</a>`,
			wantHTML: "x",
			wantText: "x",
		},
		{
			name:     "font size in range is kept",
			input:    `<span style="font-size: 18px;">big</span>`,
			wantHTML: `<span style="font-size: 18px">big</span>`,
			wantText: "big",
		},
		{
			name:     "other span styles are stripped",
			input:    `<span style="font-size: 99px">x</span><span style="color:red">y</span>`,
			wantHTML: "<span>x</span><span>y</span>",
			wantText: "xy",
		},
		{
			name:     "text is escaped",
			input:    "<p>a &lt; b &amp; c</p>",
			wantHTML: "<p>a &lt; b &amp; c</p>",
			wantText: "a < b & c",
		},
		{
			name:     "line breaks separate words",
			input:    "line1<br>line2<br/>",
			wantHTML: "line1<br>line2<br>",
			wantText: "line1 line2",
		},
		{
			name:     "comments are dropped",
			input:    "<!-- note --><p>x</p>",
			wantHTML: "<p>x</p>",
			wantText: "x",
		},
		{
			name:     "blank input",
			input:    "   \n",
			wantHTML: "",
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHTML, gotText := Sanitize(tt.input)
			assert.Equal(t, tt.wantHTML, gotHTML)
			assert.Equal(t, tt.wantText, gotText)
		})
	}
}

func TestSanitizer_EmptyParagraphsHaveNoText(t *testing.T) {
	d := NewSanitizer().SanitizeDescription("<p>   </p><p><br></p>")
	assert.True(t, d.IsEmpty())
	assert.NotEmpty(t, d.HTML)
}

func TestPlainText_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "Senior Go engineer", PlainText("<p>  Senior\n\n  <b>Go</b>\tengineer </p>"))
}

func TestSanitize_NestedDroppedContentDoesNotLeak(t *testing.T) {
	out, text := Sanitize(strings.Repeat("<div>", 50) + "<script>x</script>safe" + strings.Repeat("</div>", 50))
	assert.Equal(t, "safe", out)
	assert.Equal(t, "safe", text)
}
