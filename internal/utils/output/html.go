package output

import (
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/court-tools/rankpull/pkg/models"
)

// CleanHTML strips scripts, styles, and form chrome and keeps only the
// attributes worth reading back: href and title on links, src, alt, and
// title on images.
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas").Remove()

	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			keep := false
			switch node.Data {
			case "a":
				if attr.Key == "href" || attr.Key == "title" {
					keep = true
				}
			case "img":
				if attr.Key == "src" || attr.Key == "alt" || attr.Key == "title" {
					keep = true
				}
			default:
				// keep no attributes by default
			}
			if keep {
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	htmlStr, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(htmlStr), nil
}

// SaveHTML writes the cleaned page markup to path.
func SaveHTML(data *models.PageData, path string) error {
	cleaned, err := CleanHTML(data.HTML)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(cleaned), 0644)
}
