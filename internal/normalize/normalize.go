// Package normalize canonicalizes user input before it is stored or compared.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Username returns the comparison key for a username.
// "  Alice " and "ALICE" share the key "alice"; compatibility forms
// such as fullwidth letters fold onto their ASCII equivalents.
func Username(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return folder.String(s)
}

// DisplayText trims surrounding whitespace and drops control characters
// other than newlines and tabs.
func DisplayText(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote|pre|code|table)[\s>/]`)

// ContainsHTML reports whether s appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// HTMLToMarkdown converts HTML content to Markdown.
// Input without HTML, or input the converter rejects, is returned unchanged.
func HTMLToMarkdown(s string) string {
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}

	return strings.TrimSpace(markdown)
}
