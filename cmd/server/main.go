package main

import (
	"time"

	"leadbringer/internal/config"
	"leadbringer/internal/server"
	"leadbringer/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// Artifact store over the pipeline output folder
	outStore, err := storage.NewFileStore(cfg.OutputFolder)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open output folder")
	}
	artifacts := storage.NewArtifactStore(outStore, time.Duration(cfg.CacheTTL)*time.Second)

	// Create and initialize server
	srv := server.New(cfg, artifacts, logger)
	srv.Initialize()

	// Start server
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed to start")
	}
}
