package main

import (
	"flag"

	"leadbringer/internal/config"
	"leadbringer/internal/emails"
	"leadbringer/internal/models"
	"leadbringer/internal/storage"
)

func main() {
	// Parse command line flags
	mailbox := flag.String("mailbox", "", "Folder containing .eml files (overrides MAILBOX_FOLDER)")
	report := flag.String("report", "image_inventory.json", "Filename for the JSON inventory report")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *mailbox != "" {
		cfg.MailboxFolder = *mailbox
	}

	// Setup logger
	logger := cfg.SetupLogger()

	source := emails.NewDirSource(cfg.MailboxFolder)
	messages, err := source.Messages()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to enumerate mailbox")
	}
	logger.Info().Int("count", len(messages)).Str("mailbox", cfg.MailboxFolder).Msg("Scanning messages for images")

	var inventories []models.MessageInventory
	totalImages := 0
	for _, m := range messages {
		inv := emails.Inventory(m)
		totalImages += len(inv.Images)
		inventories = append(inventories, inv)

		logger.Info().
			Str("filename", inv.Filename).
			Str("subject", inv.Subject).
			Int("images", len(inv.Images)).
			Msg("Message inventoried")
	}

	outStore, err := storage.NewFileStore(cfg.OutputFolder)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create output folder")
	}
	path, err := outStore.SaveJSON(*report, inventories)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to write inventory report")
	}

	logger.Info().
		Int("messages", len(inventories)).
		Int("images", totalImages).
		Str("report", path).
		Msg("Image inventory complete")
}
