// Package pdf extracts front-matter text from book PDFs for use as catalog
// descriptions.
package pdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxDescriptionLength caps extracted descriptions. Longer text adds noise
// to the content model without improving similarity.
const MaxDescriptionLength = 4000

// maxPages limits extraction to the front matter, where jacket copy and
// publisher summaries live.
const maxPages = 5

// ExtractDescription pulls plain text from the first pages of a PDF,
// collapsed to single-space whitespace and truncated to
// MaxDescriptionLength.
func ExtractDescription(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > maxPages {
		pages = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString(" ")
	}

	description := strings.Join(strings.Fields(sb.String()), " ")
	if len(description) > MaxDescriptionLength {
		description = description[:MaxDescriptionLength]
	}
	return description, nil
}
