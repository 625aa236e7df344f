// Package extract derives structured offer fields from free email text.
// Everything here is pattern matching: each field is independent,
// first-match-wins, and resolves to an empty string when nothing matches.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	priceRx = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
	qtyRx   = regexp.MustCompile(`(?i)(\d{2,6}(?:,\d{3})?)\s*(?:sqft|sf|pcs|ctns?)`)
	fobRx   = regexp.MustCompile(`(?i)\bFOB[:\-]?\s*([A-Za-z ]{2,40})`)

	// Joined-multi-match fields: every occurrence is kept, "; "-delimited.
	thicknessRx = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*mm)`)
	wearLayerRx = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*mil\s*WL)`)
	dimensionRx = regexp.MustCompile(`(?i)(\d+(?:"|”)?\s*[x×]\s*\d+(?:"|”)?)`)

	subjectMarkerRx = regexp.MustCompile(`(?i)^(re:|fw:|fwd:)\s*`)
	vendorPrefixRx  = regexp.MustCompile(`(?i)^slp\s*-+\s*`)
	hypeWordsRx     = regexp.MustCompile(`(?i)\b(steal it|blowout|specials?|crazy|cheap|offer|deals?)\b`)
	trailingPunctRx = regexp.MustCompile(`[-:;!?,]+$`)
)

// Fields holds the pattern-derived attributes of one offer text.
type Fields struct {
	Price             string
	AvailableQuantity string
	FOBLocation       string
	Thickness         string
	WearLayer         string
	Dimensions        string
}

// Extract applies all field patterns to the given text.
func Extract(text string) Fields {
	return Fields{
		Price:             firstGroup(priceRx, text),
		AvailableQuantity: firstGroup(qtyRx, text),
		FOBLocation:       firstGroup(fobRx, text),
		Thickness:         allJoined(thicknessRx, text),
		WearLayer:         allJoined(wearLayerRx, text),
		Dimensions:        allJoined(dimensionRx, text),
	}
}

// firstGroup returns the trimmed first capture group of the first match, or
// "" when the pattern does not occur.
func firstGroup(rx *regexp.Regexp, text string) string {
	m := rx.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// allJoined returns every capture joined with "; ".
func allJoined(rx *regexp.Regexp, text string) string {
	ms := rx.FindAllStringSubmatch(text, -1)
	if len(ms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ms))
	for _, m := range ms {
		parts = append(parts, strings.TrimSpace(m[1]))
	}
	return strings.Join(parts, "; ")
}

// Category keywords, checked in priority order. The first hit wins so text
// mentioning both SPC and tile classifies as SPC Flooring.
var categories = []struct {
	label    string
	keywords []string
}{
	{"SPC Flooring", []string{"spc"}},
	{"LVT Flooring", []string{"lvt"}},
	{"Laminate Flooring", []string{"laminate"}},
	{"Tile", []string{"tile"}},
	{"Solid Hardwood", []string{"solid", "hardwood"}},
}

// Category classifies an offer from its subject and body text. All keywords
// of an entry must be present; when none match the category is "Other".
func Category(subject, body string) string {
	t := strings.ToLower(subject + " " + body)
	for _, c := range categories {
		matched := true
		for _, kw := range c.keywords {
			if !strings.Contains(t, kw) {
				matched = false
				break
			}
		}
		if matched {
			return c.label
		}
	}
	return "Other"
}

// CleanTitle normalizes a raw subject line into a display title: reply and
// vendor markers stripped, marketing hype removed, words title-cased.
func CleanTitle(raw string) string {
	t := strings.ToLower(raw)
	t = strings.TrimSpace(subjectMarkerRx.ReplaceAllString(t, ""))
	t = strings.TrimSpace(vendorPrefixRx.ReplaceAllString(t, ""))
	t = hypeWordsRx.ReplaceAllString(t, "")
	t = strings.TrimSpace(trailingPunctRx.ReplaceAllString(strings.TrimSpace(t), ""))

	words := strings.Fields(t)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
