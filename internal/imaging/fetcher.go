package imaging

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog"

	"leadbringer/internal/models"
)

const maxImageBytes = 20 << 20 // refuse anything larger than 20MB

// BlobStore persists image bytes under a logical name.
type BlobStore interface {
	Save(name string, data []byte) (string, error)
}

// Fetcher downloads external-URL images that survived classification and
// persists them under deterministic hash-derived names.
type Fetcher struct {
	client *http.Client
	store  BlobStore
	logger zerolog.Logger
}

// NewFetcher returns a fetcher using the given HTTP client. A nil client
// falls back to one with a 15 second timeout.
func NewFetcher(client *http.Client, store BlobStore, logger zerolog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client, store: store, logger: logger}
}

// Fetch downloads one image and saves it, returning the stored resource.
// Non-image content types are rejected.
func (f *Fetcher) Fetch(ctx context.Context, imgURL string) (models.ImageResource, error) {
	var data []byte
	var contentType string

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("build request: %w", err))
			}
			req.Header.Set("User-Agent", "Mozilla/5.0")

			resp, err := f.client.Do(req)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", imgURL, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("fetch %s: status %d", imgURL, resp.StatusCode)
			}

			contentType = resp.Header.Get("Content-Type")
			if !strings.Contains(contentType, "image") {
				return retry.Unrecoverable(fmt.Errorf("not an image: %s", contentType))
			}

			data, err = io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}
			if len(data) > maxImageBytes {
				return retry.Unrecoverable(fmt.Errorf("image exceeds %d bytes: %s", maxImageBytes, imgURL))
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.Context(ctx),
	)
	if err != nil {
		return models.ImageResource{}, err
	}

	sum := md5.Sum(data)
	ext := ExtensionFor(contentType)
	filename := "img_" + hex.EncodeToString(sum[:]) + ext

	if _, err := f.store.Save(filename, data); err != nil {
		return models.ImageResource{}, fmt.Errorf("save %s: %w", filename, err)
	}

	f.logger.Debug().Str("url", imgURL).Str("filename", filename).Int("bytes", len(data)).Msg("Fetched remote image")
	return models.ImageResource{
		Origin:      models.OriginExternalURL,
		URL:         imgURL,
		ContentType: contentType,
		Extension:   ext,
		Filename:    filename,
		Data:        data,
	}, nil
}

// ExtensionFor maps an image content type to a file extension, defaulting to
// a generic binary extension.
func ExtensionFor(contentType string) string {
	ct := strings.ToLower(contentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	switch strings.TrimSpace(ct) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tiff"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".bin"
	}
}
