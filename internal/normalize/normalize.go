// Package normalize converts raw, possibly markup-bearing email bodies into
// plain text suitable for sentiment scoring.
package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text strips script and style blocks, extracts the visible text (decoding
// markup entities along the way), collapses runs of whitespace and control
// characters into single spaces, and trims the result. It never fails;
// empty input yields empty output.
func Text(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		// The HTML parser is lenient enough that this is unreachable for
		// string input, but the contract is total either way.
		return collapse(raw)
	}

	doc.Find("script, style").Remove()

	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
