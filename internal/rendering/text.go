package rendering

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// VisibleText extracts the visible text of an HTML document as a flat list of
// non-empty lines, in document order. It is the common yardstick for checking
// that every renderer agrees on section ordering and text content.
func VisibleText(doc []byte) ([]string, error) {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var lines []string
	parsed.Find("h1, h2, h3, p, li").Each(func(_ int, sel *goquery.Selection) {
		for _, line := range strings.Split(sel.Text(), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
			}
		}
	})
	return lines, nil
}
