package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"leadbringer/internal/config"
	"leadbringer/internal/dedup"
	"leadbringer/internal/emails"
	"leadbringer/internal/imaging"
	"leadbringer/internal/knowledge"
	"leadbringer/internal/pipeline"
	"leadbringer/internal/storage"
)

func main() {
	// Parse command line flags; flags override environment configuration
	mailbox := flag.String("mailbox", "", "Folder containing .eml files (overrides MAILBOX_FOLDER)")
	out := flag.String("out", "", "Output folder for offer artifacts (overrides OUTPUT_FOLDER)")
	images := flag.String("images", "", "Output folder for extracted images (overrides IMAGE_OUTPUT_FOLDER)")
	withKnowledge := flag.Bool("knowledge", true, "Write knowledge exports after the run")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *mailbox != "" {
		cfg.MailboxFolder = *mailbox
	}
	if *out != "" {
		cfg.OutputFolder = *out
	}
	if *images != "" {
		cfg.ImageFolder = *images
	}

	// Setup logger
	logger := cfg.SetupLogger()

	// Image and artifact stores
	imageStore, err := storage.NewFileStore(cfg.ImageFolder)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create image folder")
	}
	outStore, err := storage.NewFileStore(cfg.OutputFolder)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create output folder")
	}

	// Processed-identity ledger
	ledger, err := dedup.LoadLedger(cfg.LedgerFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load processed-ID ledger")
	}
	logger.Info().Int("seen", ledger.Len()).Str("ledger", cfg.LedgerFile).Msg("Ledger loaded")

	// Pipeline stages
	source := emails.NewDirSource(cfg.MailboxFolder)
	decoder := emails.NewDecoder(imageStore, logger)
	classifier := imaging.NewClassifier(cfg.MinImageDimension, logger)

	var fetcher *imaging.Fetcher
	if cfg.FetchRemoteImages {
		client := &http.Client{Timeout: time.Duration(cfg.FetchTimeout) * time.Second}
		fetcher = imaging.NewFetcher(client, imageStore, logger)
		logger.Info().Msg("Remote image download enabled")
	}

	p := pipeline.New(source, decoder, classifier, fetcher, ledger, outStore, logger)

	res, err := p.Run(context.Background())
	if errors.Is(err, pipeline.ErrNoNewOffers) {
		if res.Failed > 0 {
			logger.Warn().Int("skipped", res.Skipped).Int("failed", res.Failed).Msg("No new offers, but some messages failed to process")
		} else {
			logger.Info().Int("skipped", res.Skipped).Int("failed", res.Failed).Msg("Mailbox already up to date, nothing to write")
		}
		return
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Pipeline run failed")
	}

	if *withKnowledge {
		exporter := knowledge.NewExporter(outStore)
		paths, err := exporter.Export(res.Offers)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to write knowledge exports")
		} else {
			logger.Info().Strs("files", paths).Msg("Knowledge exports written")
		}
	}

	logger.Info().
		Int("processed", res.Processed).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Int("offers", len(res.Offers)).
		Str("artifact", res.ArtifactPath).
		Msg("Offer extraction complete")
}
