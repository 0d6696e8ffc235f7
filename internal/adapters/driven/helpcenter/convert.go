package helpcenter

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML to markdown conversion.
var (
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	navTag       = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	headerTag    = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)
	footerTag    = regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)

	headingTag  = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	anchorTag   = regexp.MustCompile(`(?is)<a[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	imgTag      = regexp.MustCompile(`(?is)<img[^>]*src="([^"]*)"[^>]*/?>`)
	strongTag   = regexp.MustCompile(`(?is)<(?:strong|b)[^>]*>(.*?)</(?:strong|b)>`)
	emphasisTag = regexp.MustCompile(`(?is)<(?:em|i)[^>]*>(.*?)</(?:em|i)>`)
	codeTag     = regexp.MustCompile(`(?is)<code[^>]*>(.*?)</code>`)
	listItemTag = regexp.MustCompile(`(?is)<li[^>]*>`)

	blockClose    = regexp.MustCompile(`(?i)</(p|div|li|ul|ol|tr|blockquote|pre|table|section|article)>`)
	blockOpen     = regexp.MustCompile(`(?i)<(p|div|ul|ol|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Converter turns help centre article HTML into markdown. Absolute links
// into the help centre are rewritten to relative paths so the corpus does
// not depend on the public hostname.
type Converter struct {
	publicHost string
	extraStrip []*regexp.Regexp
}

// NewConverter creates a converter without link rewriting.
func NewConverter() *Converter {
	return &Converter{}
}

// NewConverterWithHost creates a converter that rewrites absolute links
// on the given host (e.g. https://support.example.com) to relative paths.
func NewConverterWithHost(publicHost string) *Converter {
	return &Converter{publicHost: strings.TrimSuffix(publicHost, "/")}
}

// StripTags registers additional tags whose content is dropped
// entirely, on top of the built-in script/style/nav set. Returns the
// converter for chaining.
func (c *Converter) StripTags(tags ...string) *Converter {
	for _, tag := range tags {
		c.extraStrip = append(c.extraStrip, regexp.MustCompile(`(?is)<`+regexp.QuoteMeta(tag)+`[^>]*>.*?</`+regexp.QuoteMeta(tag)+`>`))
	}
	return c
}

// ToMarkdown converts the article body to markdown, prefixed with the
// title as a level-one heading.
func (c *Converter) ToMarkdown(title, body string) string {
	content := c.convertBody(body)
	title = strings.TrimSpace(title)
	if title == "" {
		return content
	}
	if content == "" {
		return "# " + title
	}
	return "# " + title + "\n\n" + content
}

func (c *Converter) convertBody(body string) string {
	// Drop non-content elements entirely.
	body = scriptTag.ReplaceAllString(body, "")
	body = styleTag.ReplaceAllString(body, "")
	body = navTag.ReplaceAllString(body, "")
	body = headerTag.ReplaceAllString(body, "")
	body = footerTag.ReplaceAllString(body, "")
	body = htmlComments.ReplaceAllString(body, "")
	for _, re := range c.extraStrip {
		body = re.ReplaceAllString(body, "")
	}

	// Structural elements to markdown.
	body = headingTag.ReplaceAllStringFunc(body, func(match string) string {
		parts := headingTag.FindStringSubmatch(match)
		level := int(parts[1][0] - '0')
		return "\n" + strings.Repeat("#", level) + " " + strings.TrimSpace(allTags.ReplaceAllString(parts[2], "")) + "\n"
	})
	body = anchorTag.ReplaceAllStringFunc(body, func(match string) string {
		parts := anchorTag.FindStringSubmatch(match)
		href := c.rewriteLink(parts[1])
		text := strings.TrimSpace(allTags.ReplaceAllString(parts[2], ""))
		if text == "" {
			text = href
		}
		return fmt.Sprintf("[%s](%s)", text, href)
	})
	body = imgTag.ReplaceAllString(body, "![]($1)")
	body = strongTag.ReplaceAllString(body, "**$1**")
	body = emphasisTag.ReplaceAllString(body, "*$1*")
	body = codeTag.ReplaceAllString(body, "`$1`")
	body = listItemTag.ReplaceAllString(body, "\n- ")

	// Remaining block elements become line breaks.
	body = blockOpen.ReplaceAllString(body, "\n")
	body = blockClose.ReplaceAllString(body, "\n")
	body = brTags.ReplaceAllString(body, "\n")

	// Strip whatever tags are left and decode entities.
	body = allTags.ReplaceAllString(body, "")
	body = html.UnescapeString(body)

	// Collapse whitespace without flattening paragraph breaks.
	body = multiSpaces.ReplaceAllString(body, " ")
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	body = strings.Join(lines, "\n")
	body = multiNewlines.ReplaceAllString(body, "\n\n")

	return strings.TrimSpace(body)
}

// rewriteLink converts absolute help centre URLs to relative paths.
func (c *Converter) rewriteLink(href string) string {
	if c.publicHost != "" && strings.HasPrefix(href, c.publicHost+"/") {
		return strings.TrimPrefix(href, c.publicHost)
	}
	return href
}
