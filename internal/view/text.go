package view

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "p, div, tr, li, h1, h2, h3, h4, h5, h6, table, nav, section, article, header, footer"

// PlainText reduces an HTML fragment to readable lines: block elements end
// a line, table cells are separated by two spaces and blank lines are
// dropped. Input that does not parse is returned trimmed.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("td, th").AppendHtml("\t")
	doc.Find(blockSelector).AppendHtml("\n")

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		var cells []string
		for _, cell := range strings.Split(line, "\t") {
			if cell = strings.Join(strings.Fields(cell), " "); cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, "  "))
		}
	}
	return strings.Join(lines, "\n")
}
