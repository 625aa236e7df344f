package dedup

import (
	"time"

	"leadbringer/internal/models"
)

type candidate struct {
	offer    models.ProductOffer
	received time.Time
}

// Resolver retains one winning offer per subject group key. The candidate
// with the strictly later date wins; on an exact tie the first-seen candidate
// is kept.
type Resolver struct {
	order   []string
	winners map[string]candidate
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{winners: make(map[string]candidate)}
}

// Offer submits a candidate for the given group key.
func (r *Resolver) Offer(key string, offer models.ProductOffer, received time.Time) {
	prev, ok := r.winners[key]
	if !ok {
		r.order = append(r.order, key)
		r.winners[key] = candidate{offer: offer, received: received}
		return
	}
	if received.After(prev.received) {
		r.winners[key] = candidate{offer: offer, received: received}
	}
}

// Len returns the number of distinct group keys seen.
func (r *Resolver) Len() int {
	return len(r.winners)
}

// Offers returns the winning offer of every group, ordered by the first
// appearance of each key during the scan.
func (r *Resolver) Offers() []models.ProductOffer {
	offers := make([]models.ProductOffer, 0, len(r.order))
	for _, key := range r.order {
		offers = append(offers, r.winners[key].offer)
	}
	return offers
}
