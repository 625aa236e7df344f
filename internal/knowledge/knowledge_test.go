package knowledge

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadbringer/internal/models"
)

type memStore struct {
	files map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (s *memStore) Save(name string, data []byte) (string, error) {
	s.files[name] = data
	return name, nil
}

func sampleOffers() []models.ProductOffer {
	return []models.ProductOffer{
		{
			Title:             "RE: SPC Click 5mm Blowout",
			Category:          "SPC Flooring",
			Price:             "1.25",
			FOBLocation:       "Los Angeles",
			AvailableQuantity: "5000",
			PrimaryImage:      "photo1.png",
			MoreImages:        []string{"photo2.png"},
			SourceEmail:       "vendor@example.com",
			MessageID:         "<a@x>",
			Status:            models.StatusUnreviewed,
		},
		{
			Title:      "Porcelain Tile Closeout",
			Category:   "Tile",
			MoreImages: []string{},
			MessageID:  "<b@x>",
			Status:     models.StatusUnreviewed,
		},
		{
			Title:      "Another SPC Deal",
			Category:   "SPC Flooring",
			MoreImages: []string{},
			MessageID:  "<c@x>",
			Status:     models.StatusUnreviewed,
		},
	}
}

func TestExportWritesBothFiles(t *testing.T) {
	store := newMemStore()
	e := NewExporter(store)
	e.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	paths, err := e.Export(sampleOffers())
	require.NoError(t, err)
	assert.Equal(t, []string{"offers_knowledge.txt", "offers_summary.csv"}, paths)
	assert.Contains(t, store.files, "offers_knowledge.txt")
	assert.Contains(t, store.files, "offers_summary.csv")
}

func TestRenderTextGroupsByCategory(t *testing.T) {
	store := newMemStore()
	e := NewExporter(store)
	e.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	text := string(e.renderText(sampleOffers()))

	assert.Contains(t, text, "Generated: 2025-03-01 12:00:00")
	assert.Contains(t, text, "Total Offers: 3")
	assert.Contains(t, text, "SPC Flooring: 2 offers")
	assert.Contains(t, text, "Tile: 1 offers")
	assert.Contains(t, text, "SPC FLOORING OFFERS:")

	// Reply marker and hype words cleaned in the display title
	assert.Contains(t, text, "PRODUCT: Spc Click 5mm")
	assert.NotContains(t, text, "RE: SPC")

	// Empty fields fall back to readable defaults
	assert.Contains(t, text, "Price: Contact for pricing")
	assert.Contains(t, text, "Images Available: 2")
}

func TestRenderCSV(t *testing.T) {
	data, err := renderCSV(sampleOffers())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 3 offers

	assert.Equal(t, "title", records[0][0])
	assert.Equal(t, "Spc Click 5mm", records[1][0])
	assert.Equal(t, "2", records[1][9]) // image_count
	assert.Equal(t, "<b@x>", records[2][12])
}

func TestExportEmptyOfferSet(t *testing.T) {
	store := newMemStore()
	e := NewExporter(store)

	paths, err := e.Export(nil)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	assert.Contains(t, string(store.files["offers_knowledge.txt"]), "Total Offers: 0")
}
