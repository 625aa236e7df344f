package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadbringer/internal/models"
	"leadbringer/internal/storage"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		version        string
		expectedStatus int
		checkResponse  func(t *testing.T, resp models.HealthResponse)
	}{
		{
			name:           "returns healthy status",
			version:        "1.0.0",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp models.HealthResponse) {
				assert.Equal(t, "healthy", resp.Status)
				assert.Equal(t, "1.0.0", resp.Version)
				assert.WithinDuration(t, time.Now().UTC(), resp.Timestamp, 5*time.Second)
			},
		},
		{
			name:           "returns healthy with empty version",
			version:        "",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp models.HealthResponse) {
				assert.Equal(t, "healthy", resp.Status)
				assert.Equal(t, "", resp.Version)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := HealthHandler(tt.version)
			err := handler(c)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			var response models.HealthResponse
			err = json.Unmarshal(rec.Body.Bytes(), &response)
			require.NoError(t, err)

			tt.checkResponse(t, response)
		})
	}
}

func TestRootHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RootHandler("2.1.0")
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "leadbringer API", response["service"])
	assert.Equal(t, "2.1.0", response["version"])
	assert.Equal(t, "running", response["status"])
}

// seededArtifacts writes an offers artifact into a fresh store and returns an
// artifact store over it.
func seededArtifacts(t *testing.T, offers []models.ProductOffer) *storage.ArtifactStore {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	if offers != nil {
		_, err = store.SaveJSON("offers_20250301_120000.json", offers)
		require.NoError(t, err)
	}
	return storage.NewArtifactStore(store, time.Minute)
}

func testOffers() []models.ProductOffer {
	return []models.ProductOffer{
		{
			Title:     "SPC Click 5mm",
			Category:  "SPC Flooring",
			Price:     "1.25",
			MessageID: "<first@vendor.example>",
			Status:    models.StatusUnreviewed,
		},
		{
			Title:     "Porcelain Tile Closeout",
			Category:  "Tile",
			MessageID: "<second@vendor.example>",
			Status:    models.StatusUnreviewed,
		},
	}
}

func TestOffersHandler(t *testing.T) {
	tests := []struct {
		name           string
		offers         []models.ProductOffer
		expectedStatus int
		checkResponse  func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:           "returns latest offer set",
			offers:         testOffers(),
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp models.OffersResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, 2, resp.Count)
				assert.Equal(t, "offers_20250301_120000.json", resp.Artifact)
				require.Len(t, resp.Offers, 2)
				assert.Equal(t, "SPC Click 5mm", resp.Offers[0].Title)
			},
		},
		{
			name:           "no artifact yet",
			offers:         nil,
			expectedStatus: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp models.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "no offers available yet", resp.Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/offers", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := OffersHandler(seededArtifacts(t, tt.offers))
			err := handler(c)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			tt.checkResponse(t, rec)
		})
	}
}

func TestOfferHandler(t *testing.T) {
	tests := []struct {
		name           string
		offers         []models.ProductOffer
		id             string
		expectedStatus int
		expectedTitle  string
	}{
		{
			name:           "finds offer by bare id",
			offers:         testOffers(),
			id:             "second@vendor.example",
			expectedStatus: http.StatusOK,
			expectedTitle:  "Porcelain Tile Closeout",
		},
		{
			name:           "finds offer by bracketed id",
			offers:         testOffers(),
			id:             "<first@vendor.example>",
			expectedStatus: http.StatusOK,
			expectedTitle:  "SPC Click 5mm",
		},
		{
			name:           "unknown id",
			offers:         testOffers(),
			id:             "missing@vendor.example",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "no artifact yet",
			offers:         nil,
			id:             "first@vendor.example",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/offers/"+tt.id, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)

			handler := OfferHandler(seededArtifacts(t, tt.offers))
			err := handler(c)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedTitle != "" {
				var offer models.ProductOffer
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &offer))
				assert.Equal(t, tt.expectedTitle, offer.Title)
			}
		})
	}
}
