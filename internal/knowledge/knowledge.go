// Package knowledge renders the deduplicated offer set into flat knowledge
// exports: a human-readable text digest grouped by category and a CSV summary
// for spreadsheet review.
package knowledge

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"leadbringer/internal/extract"
	"leadbringer/internal/models"
)

const (
	textFilename = "offers_knowledge.txt"
	csvFilename  = "offers_summary.csv"
)

// Store persists a named export file.
type Store interface {
	Save(name string, data []byte) (string, error)
}

// Exporter writes knowledge exports through a store.
type Exporter struct {
	store Store
	now   func() time.Time
}

// NewExporter returns an exporter writing into the given store.
func NewExporter(store Store) *Exporter {
	return &Exporter{store: store, now: time.Now}
}

// Export writes both knowledge files and returns their paths.
func (e *Exporter) Export(offers []models.ProductOffer) ([]string, error) {
	textPath, err := e.store.Save(textFilename, e.renderText(offers))
	if err != nil {
		return nil, fmt.Errorf("write text knowledge: %w", err)
	}

	csvData, err := renderCSV(offers)
	if err != nil {
		return nil, err
	}
	csvPath, err := e.store.Save(csvFilename, csvData)
	if err != nil {
		return nil, fmt.Errorf("write csv summary: %w", err)
	}

	return []string{textPath, csvPath}, nil
}

// renderText produces the category-grouped text digest.
func (e *Exporter) renderText(offers []models.ProductOffer) []byte {
	var b strings.Builder

	b.WriteString("OFFER KNOWLEDGE BASE\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", e.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total Offers: %d\n\n", len(offers))

	order, byCategory := groupByCategory(offers)

	b.WriteString("CATEGORY OVERVIEW:\n")
	b.WriteString(strings.Repeat("-", 20) + "\n")
	for _, cat := range order {
		fmt.Fprintf(&b, "%s: %d offers\n", cat, len(byCategory[cat]))
	}
	b.WriteString("\n")

	for _, cat := range order {
		fmt.Fprintf(&b, "%s OFFERS:\n", strings.ToUpper(cat))
		b.WriteString(strings.Repeat("=", 30) + "\n\n")

		for _, offer := range byCategory[cat] {
			fmt.Fprintf(&b, "PRODUCT: %s\n", displayTitle(offer))
			fmt.Fprintf(&b, "  Category: %s\n", offer.Category)
			fmt.Fprintf(&b, "  Price: %s\n", orDefault(offer.Price, "Contact for pricing"))
			fmt.Fprintf(&b, "  FOB Location: %s\n", orDefault(offer.FOBLocation, "Various locations"))
			fmt.Fprintf(&b, "  Quantity: %s\n", orDefault(offer.AvailableQuantity, "Unknown"))
			fmt.Fprintf(&b, "  Source: %s\n", orDefault(offer.SourceEmail, "Unknown"))
			fmt.Fprintf(&b, "  Images Available: %d\n", imageCount(offer))
			if offer.PrimaryImage != "" {
				fmt.Fprintf(&b, "  Primary Image: %s\n", offer.PrimaryImage)
			}
			b.WriteString("\n")
		}
	}

	return []byte(b.String())
}

// renderCSV produces one row per offer with a fixed header.
func renderCSV(offers []models.ProductOffer) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"title", "category", "price", "fob_location", "available_quantity",
		"thickness", "wear_layer", "dimensions", "primary_image",
		"image_count", "source_email", "date_received", "message_id", "status",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, offer := range offers {
		row := []string{
			displayTitle(offer), offer.Category, offer.Price, offer.FOBLocation,
			offer.AvailableQuantity, offer.Thickness, offer.WearLayer,
			offer.Dimensions, offer.PrimaryImage,
			fmt.Sprintf("%d", imageCount(offer)),
			offer.SourceEmail, offer.DateReceived, offer.MessageID, offer.Status,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// groupByCategory buckets offers by category preserving first-appearance
// order of each category.
func groupByCategory(offers []models.ProductOffer) ([]string, map[string][]models.ProductOffer) {
	var order []string
	byCategory := make(map[string][]models.ProductOffer)
	for _, offer := range offers {
		cat := offer.Category
		if cat == "" {
			cat = "Other"
		}
		if _, ok := byCategory[cat]; !ok {
			order = append(order, cat)
		}
		byCategory[cat] = append(byCategory[cat], offer)
	}
	return order, byCategory
}

func displayTitle(offer models.ProductOffer) string {
	if clean := extract.CleanTitle(offer.Title); clean != "" {
		return clean
	}
	return offer.Title
}

func imageCount(offer models.ProductOffer) int {
	n := len(offer.MoreImages)
	if offer.PrimaryImage != "" {
		n++
	}
	return n
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
