package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"leadbringer/internal/models"
)

// ErrNoArtifact is returned when no pipeline run has produced offers yet.
var ErrNoArtifact = errors.New("no offers artifact found")

// ArtifactStore serves the most recent offers artifact with a small TTL
// cache so repeated API calls do not re-read and re-parse the file.
type ArtifactStore struct {
	store *FileStore
	ttl   time.Duration

	mu      sync.RWMutex
	name    string
	offers  []models.ProductOffer
	expires time.Time
}

// NewArtifactStore returns an artifact store over the pipeline output folder.
func NewArtifactStore(store *FileStore, ttl time.Duration) *ArtifactStore {
	return &ArtifactStore{store: store, ttl: ttl}
}

// Latest returns the newest artifact name and its offers.
func (a *ArtifactStore) Latest() (string, []models.ProductOffer, error) {
	a.mu.RLock()
	if time.Now().Before(a.expires) {
		name, offers := a.name, a.offers
		a.mu.RUnlock()
		return name, offers, nil
	}
	a.mu.RUnlock()

	name, err := a.store.Latest("offers_", ".json")
	if err != nil {
		return "", nil, err
	}
	if name == "" {
		return "", nil, ErrNoArtifact
	}

	data, err := a.store.Read(name)
	if err != nil {
		return "", nil, err
	}
	var offers []models.ProductOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		return "", nil, fmt.Errorf("parse artifact %s: %w", name, err)
	}

	a.mu.Lock()
	a.name = name
	a.offers = offers
	a.expires = time.Now().Add(a.ttl)
	a.mu.Unlock()

	return name, offers, nil
}
