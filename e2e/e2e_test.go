// Package e2e exercises the full flow over real HTTP: a mailbox of .eml
// files goes through the extraction pipeline, and the resulting artifact is
// served by the offers API.
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadbringer/internal/config"
	"leadbringer/internal/dedup"
	"leadbringer/internal/emails"
	"leadbringer/internal/imaging"
	"leadbringer/internal/models"
	"leadbringer/internal/pipeline"
	"leadbringer/internal/server"
	"leadbringer/internal/storage"
)

func writeEML(t *testing.T, dir, name, msgID, subject, date, body string) {
	t.Helper()

	raw := "From: Vendor <vendor@example.com>\r\n" +
		"Message-ID: " + msgID + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Date: " + date + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body + "\r\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(raw), 0o644))
}

// startAPI runs the pipeline over the mailbox and serves the output folder.
func startAPI(t *testing.T, mailbox string) *httptest.Server {
	t.Helper()

	root := t.TempDir()
	logger := zerolog.Nop()

	images, err := storage.NewFileStore(filepath.Join(root, "images"))
	require.NoError(t, err)
	out, err := storage.NewFileStore(filepath.Join(root, "offers"))
	require.NoError(t, err)
	ledger, err := dedup.LoadLedger(filepath.Join(root, "processed_ids.json"))
	require.NoError(t, err)

	source := emails.NewDirSource(mailbox)
	decoder := emails.NewDecoder(images, logger)
	classifier := imaging.NewClassifier(imaging.DefaultMinDimension, logger)

	p := pipeline.New(source, decoder, classifier, nil, ledger, out, logger)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	cfg := &config.Config{Port: "0", Version: "e2e"}
	artifacts := storage.NewArtifactStore(out, time.Minute)
	srv := server.New(cfg, artifacts, logger)
	srv.Initialize()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestMailboxToAPI(t *testing.T) {
	mailbox := t.TempDir()
	writeEML(t, mailbox, "spc.eml", "<spc@vendor.example>", "SPC Click 5mm Blowout",
		"Mon, 02 Jan 2023 10:00:00 +0000", "Price: $1.25 FOB Los Angeles, 5000 sqft available")
	writeEML(t, mailbox, "tile_old.eml", "<tile-old@vendor.example>", "Porcelain Tile Closeout",
		"Mon, 02 Jan 2023 10:00:00 +0000", "old tile batch, $0.99")
	writeEML(t, mailbox, "tile_new.eml", "<tile-new@vendor.example>", "RE: Porcelain Tile Closeout",
		"Tue, 03 Jan 2023 10:00:00 +0000", "updated tile batch, $0.89")

	ts := startAPI(t, mailbox)

	var health models.HealthResponse
	code := getJSON(t, ts.URL+"/health", &health)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "e2e", health.Version)

	// Three messages collapse to two offers: the tile thread deduplicates to
	// its newest message.
	var offers models.OffersResponse
	code = getJSON(t, ts.URL+"/api/offers", &offers)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, offers.Count)
	require.Len(t, offers.Offers, 2)

	byID := make(map[string]models.ProductOffer)
	for _, o := range offers.Offers {
		byID[o.MessageID] = o
	}
	require.Contains(t, byID, "<spc@vendor.example>")
	require.Contains(t, byID, "<tile-new@vendor.example>")
	assert.NotContains(t, byID, "<tile-old@vendor.example>")

	spc := byID["<spc@vendor.example>"]
	assert.Equal(t, "SPC Flooring", spc.Category)
	assert.Equal(t, "1.25", spc.Price)
	assert.Equal(t, "Los Angeles", spc.FOBLocation)
	assert.Equal(t, "5000", spc.AvailableQuantity)

	// Single-offer lookup accepts the ID with or without angle brackets
	var single models.ProductOffer
	code = getJSON(t, ts.URL+"/api/offers/spc@vendor.example", &single)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SPC Click 5mm Blowout", single.Title)

	var missing models.ErrorResponse
	code = getJSON(t, ts.URL+"/api/offers/unknown@nowhere", &missing)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "offer not found", missing.Error)
}

func TestAPIBeforeFirstRun(t *testing.T) {
	logger := zerolog.Nop()
	out, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{Port: "0", Version: "e2e"}
	srv := server.New(cfg, storage.NewArtifactStore(out, time.Minute), logger)
	srv.Initialize()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var resp models.ErrorResponse
	code := getJSON(t, ts.URL+"/api/offers", &resp)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "no offers available yet", resp.Error)
}
