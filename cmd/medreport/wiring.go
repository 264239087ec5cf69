package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"medreport/internal/config"
	"medreport/internal/generative"
	"medreport/internal/generative/claude"
	"medreport/internal/generative/gemini"
	"medreport/internal/generative/openai"
	"medreport/internal/icd"
	"medreport/internal/port"
	"medreport/internal/service"
	"medreport/internal/specialization"
	"medreport/internal/structurer"
)

// app holds the wired collaborators shared by every command.
type app struct {
	reports           service.ReportService
	catalog           *icd.Catalog
	generativeEnabled bool
}

func registerProviders() {
	generative.RegisterProvider("claude", func(cfg *config.GenerativeProviderConfig) (port.Completer, error) {
		return claude.NewCompleter(cfg), nil
	})
	generative.RegisterProvider("gemini", func(cfg *config.GenerativeProviderConfig) (port.Completer, error) {
		return gemini.NewCompleter(cfg), nil
	})
	generative.RegisterProvider("openai", func(cfg *config.GenerativeProviderConfig) (port.Completer, error) {
		return openai.NewCompleter(cfg), nil
	})
}

func buildApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	registerProviders()

	completer, err := generative.NewFromConfig(&cfg.Generative, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generative providers: %w", err)
	}
	// A nil *Client stored in the interface would defeat the structurer's nil checks.
	var generator port.ReportGenerator
	if completer != nil {
		generator = generative.NewClient(completer, logger)
		logger.Info().Int("providers", len(cfg.Generative.ProviderConfigs())).Msg("generative path enabled")
	} else {
		logger.Info().Msg("no generative provider configured, using deterministic paths")
	}

	catalog := icd.DefaultCatalog()
	if path := cfg.ICD.CatalogPath; path != "" {
		entries, err := icd.LoadCatalogXLSX(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load ICD catalog: %w", err)
		}
		catalog.Add(entries...)
		logger.Info().Str("path", path).Int("entries", len(entries)).Msg("ICD catalog loaded")
	}
	coder := icd.NewService(generator, catalog, cfg.ICD.MinConfidence, logger)

	registry := specialization.NewDefaultRegistry(specialization.Dependencies{
		Generator: generator,
		Coder:     coder,
		Logger:    logger,
		Options: structurer.Options{
			DefaultLanguage:      cfg.Structurer.DefaultLanguage,
			GenerativeTimeout:    cfg.Structurer.GenerativeTimeout(),
			EnhancedTimeout:      cfg.Structurer.EnhancedTimeout(),
			CodingTimeout:        cfg.Structurer.CodingTimeout(),
			DisableModelFindings: !cfg.Structurer.EnhancedFindings,
		},
	})

	return &app{
		reports:           service.NewReportService(registry, cfg.Server.MaxTextBytes, logger),
		catalog:           catalog,
		generativeEnabled: generator != nil,
	}, nil
}
