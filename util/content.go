package util

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	trailingEmptyParagraphs = regexp.MustCompile(`(?i)(\s*<p>\s*(<br\s*/?>|&nbsp;)?\s*</p>)+\s*$`)
	blockBreaks             = regexp.MustCompile(`(?i)</p>|<br\s*/?>|</li>|</h[1-6]>|</blockquote>`)
	manyNewlines            = regexp.MustCompile(`\n{3,}`)

	// bluemonday policies are safe for concurrent use once built
	stripPolicy = bluemonday.StrictPolicy()
	ugcPolicy   = bluemonday.UGCPolicy()

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
	)
)

// RemoveTrailingEmptyPTags drops the empty paragraphs rich-text editors leave at the end
func RemoveTrailingEmptyPTags(content string) string {
	return trailingEmptyParagraphs.ReplaceAllString(content, "")
}

// TrimTrailingWhitespace removes whitespace after the last visible character.
// Whitespace-only input is returned unchanged.
func TrimTrailingWhitespace(content string) string {
	trimmed := strings.TrimRightFunc(content, unicode.IsSpace)
	if trimmed == "" {
		return content
	}
	return trimmed
}

// NormalizeReplyContent prepares composer text for submission
func NormalizeReplyContent(raw string) string {
	return TrimTrailingWhitespace(RemoveTrailingEmptyPTags(raw))
}

// IsBlank reports whether content has nothing visible once markup is removed
func IsBlank(content string) bool {
	return strings.TrimSpace(HTMLToText(content)) == ""
}

// HTMLToText renders rich text as plain terminal text
func HTMLToText(content string) string {
	content = RemoveTrailingEmptyPTags(content)
	content = blockBreaks.ReplaceAllString(content, "\n")
	text := html.UnescapeString(stripPolicy.Sanitize(content))
	text = StripControl(text)
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// StripControl removes terminal escape sequences and control characters
// other than newline and tab, so remote text cannot drive the reader's terminal
func StripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, ansi.Strip(text))
}

// SanitizeHTML keeps safe user formatting, used for RSS output
func SanitizeHTML(content string) string {
	return ugcPolicy.Sanitize(RemoveTrailingEmptyPTags(content))
}

// MarkdownToHTML converts composer Markdown into the rich text the content API stores
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(ugcPolicy.Sanitize(buf.String())), nil
}

// TruncateWidth truncates s to at most width terminal cells, adding an ellipsis
func TruncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// FirstLine returns the first non-empty line of text
func FirstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
