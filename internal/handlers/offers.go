package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"leadbringer/internal/models"
	"leadbringer/internal/storage"
)

// HealthHandler handles basic health check requests
func HealthHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   version,
		})
	}
}

// RootHandler handles requests to the root endpoint
func RootHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "leadbringer API",
			"version": version,
			"status":  "running",
		})
	}
}

// OffersHandler serves the latest deduplicated offer set
func OffersHandler(artifacts *storage.ArtifactStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		name, offers, err := artifacts.Latest()
		if errors.Is(err, storage.ErrNoArtifact) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no offers available yet"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		}

		return c.JSON(http.StatusOK, models.OffersResponse{
			Count:    len(offers),
			Artifact: name,
			Offers:   offers,
		})
	}
}

// OfferHandler serves a single offer by message ID. The surrounding angle
// brackets of the ID are optional in the request.
func OfferHandler(artifacts *storage.ArtifactStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, offers, err := artifacts.Latest()
		if errors.Is(err, storage.ErrNoArtifact) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no offers available yet"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		}

		wanted := strings.Trim(c.Param("id"), "<>")
		for _, offer := range offers {
			if strings.Trim(offer.MessageID, "<>") == wanted {
				return c.JSON(http.StatusOK, offer)
			}
		}
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "offer not found"})
	}
}
