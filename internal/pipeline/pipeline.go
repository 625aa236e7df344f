// Package pipeline orchestrates the offer extraction run: enumerate source
// messages, decode, extract fields, classify images, deduplicate, and emit
// one artifact of surviving offers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"leadbringer/internal/dedup"
	"leadbringer/internal/emails"
	"leadbringer/internal/extract"
	"leadbringer/internal/imaging"
	"leadbringer/internal/models"
	"leadbringer/internal/storage"
)

// ErrNoNewOffers signals a clean run that produced nothing to write: every
// message was already seen or the source set was empty.
var ErrNoNewOffers = errors.New("no new offers")

// Source enumerates raw messages. Ordering must be stable within one run.
type Source interface {
	Messages() ([]*emails.RawMessage, error)
}

// Pipeline wires the decode, extract, classify and dedup stages together.
type Pipeline struct {
	source     Source
	decoder    *emails.Decoder
	classifier *imaging.Classifier
	fetcher    *imaging.Fetcher // nil disables remote image download
	ledger     *dedup.Ledger
	out        *storage.FileStore
	logger     zerolog.Logger
	now        func() time.Time
}

// Result reports what one run did.
type Result struct {
	Processed    int
	Skipped      int
	Failed       int
	Offers       []models.ProductOffer
	ArtifactPath string
}

// New creates a pipeline. fetcher may be nil when remote image download is
// disabled.
func New(source Source, decoder *emails.Decoder, classifier *imaging.Classifier,
	fetcher *imaging.Fetcher, ledger *dedup.Ledger, out *storage.FileStore,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		source:     source,
		decoder:    decoder,
		classifier: classifier,
		fetcher:    fetcher,
		ledger:     ledger,
		out:        out,
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes the whole source set. Per-message failures are logged and
// skipped; failures to enumerate the source, persist the ledger or write the
// artifact abort the run. A run with nothing new returns ErrNoNewOffers and
// writes no artifact.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	messages, err := p.source.Messages()
	if err != nil {
		return nil, fmt.Errorf("enumerate messages: %w", err)
	}
	p.logger.Info().Int("count", len(messages)).Msg("Source messages found")

	res := &Result{}
	resolver := dedup.NewResolver()

	for _, m := range messages {
		identity, offer, key, received, skipped, err := p.process(ctx, m)
		if err != nil {
			p.logger.Error().Err(err).Str("filename", m.Filename).Str("message_id", identity).Msg("Failed to process message")
			res.Failed++
			continue
		}
		if skipped {
			p.logger.Debug().Str("message_id", identity).Msg("Already processed, skipping")
			res.Skipped++
			continue
		}

		resolver.Offer(key, offer, received)

		// Ledger membership tracks "seen", not "selected": record the
		// message even if it loses its subject group.
		if err := p.ledger.Add(identity); err != nil {
			return nil, fmt.Errorf("persist ledger: %w", err)
		}

		p.logger.Info().Str("title", truncate(offer.Title, 50)).Msg("Parsed offer")
		res.Processed++
	}

	p.logger.Info().
		Int("processed", res.Processed).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("Scan complete")

	if resolver.Len() == 0 {
		return res, ErrNoNewOffers
	}

	res.Offers = resolver.Offers()
	name := fmt.Sprintf("offers_%s.json", p.now().Format("20060102_150405"))
	path, err := p.out.SaveJSON(name, res.Offers)
	if err != nil {
		return nil, fmt.Errorf("write offers artifact: %w", err)
	}
	res.ArtifactPath = path

	p.logger.Info().Int("offers", len(res.Offers)).Str("artifact", path).Msg("Wrote deduplicated offers")
	return res, nil
}

// process handles one message through decode, extraction and classification.
func (p *Pipeline) process(ctx context.Context, m *emails.RawMessage) (identity string, offer models.ProductOffer, key string, received time.Time, skipped bool, err error) {
	msg, err := m.Message()
	if err != nil {
		return "", models.ProductOffer{}, "", time.Time{}, false, err
	}

	identity = dedup.Identity(msg.Header.Get("Message-ID"), m.Raw)
	if p.ledger.Seen(identity) {
		return identity, models.ProductOffer{}, "", time.Time{}, true, nil
	}

	subject := emails.DecodeHeader(msg.Header.Get("Subject"))
	if subject == "" {
		subject = m.Stem
	}
	key = dedup.GroupKey(subject)
	dateRaw := msg.Header.Get("Date")
	received = dedup.ParseDate(dateRaw)

	decoded, err := p.decoder.Decode(msg)
	if err != nil {
		return identity, models.ProductOffer{}, "", time.Time{}, false, err
	}

	images := decoded.ImageFilenames()
	images = append(images, p.fetchRemote(ctx, decoded.HTML)...)

	fields := extract.Extract(decoded.Body)
	offer = models.ProductOffer{
		Title:              subject,
		Category:           extract.Category(subject, decoded.Body),
		ProductDescription: decoded.Body,
		Price:              fields.Price,
		FOBLocation:        fields.FOBLocation,
		AvailableQuantity:  fields.AvailableQuantity,
		Thickness:          fields.Thickness,
		WearLayer:          fields.WearLayer,
		Dimensions:         fields.Dimensions,
		MoreImages:         []string{},
		SourceEmail:        emails.SenderAddress(msg.Header.Get("From")),
		DateReceived:       dateRaw,
		MessageID:          identity,
		Status:             models.StatusUnreviewed,
	}
	if len(images) > 0 {
		offer.PrimaryImage = images[0]
		offer.MoreImages = images[1:]
	}

	return identity, offer, key, received, false, nil
}

// fetchRemote downloads HTML-referenced images that survive classification.
// Download failures degrade to skipping the image.
func (p *Pipeline) fetchRemote(ctx context.Context, html string) []string {
	if p.fetcher == nil || html == "" {
		return nil
	}

	var names []string
	for _, imgURL := range p.classifier.ExtractQualityImages(html) {
		img, err := p.fetcher.Fetch(ctx, imgURL)
		if err != nil {
			p.logger.Warn().Err(err).Str("url", imgURL).Msg("Remote image fetch failed")
			continue
		}
		names = append(names, img.Filename)
	}
	return names
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
