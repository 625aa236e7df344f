package imaging

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// productAltWords mark alt text that indicates a genuine product photo.
var productAltWords = []string{"product", "floor", "tile", "carpet", "stone"}

// ExtractQualityImages collects external image URLs from an HTML body,
// dropping tracking pixels. Images whose alt text names a product are moved
// to the front; duplicates are removed preserving order.
func (c *Classifier) ExtractQualityImages(html string) []string {
	if html == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var found []string
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if src == "" || !strings.HasPrefix(src, "http") {
			return
		}

		attrs := map[string]string{}
		if w, ok := img.Attr("width"); ok {
			attrs["width"] = w
		}
		if h, ok := img.Attr("height"); ok {
			attrs["height"] = h
		}
		if c.IsTrackingPixel(src, attrs) {
			c.logger.Debug().Str("src", src).Msg("Filtered tracking pixel")
			return
		}

		alt, _ := img.Attr("alt")
		if hasProductAlt(alt) {
			found = append([]string{src}, found...)
		} else {
			found = append(found, src)
		}
	})

	seen := make(map[string]struct{}, len(found))
	unique := found[:0]
	for _, src := range found {
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		unique = append(unique, src)
	}
	return unique
}

func hasProductAlt(alt string) bool {
	alt = strings.ToLower(alt)
	for _, word := range productAltWords {
		if strings.Contains(alt, word) {
			return true
		}
	}
	return false
}
