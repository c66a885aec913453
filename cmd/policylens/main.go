// Command policylens answers questions about insurance policy documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/policylens/internal/adapters/driven/ai"
	"github.com/custodia-labs/policylens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/policylens/internal/adapters/driven/extract"
	"github.com/custodia-labs/policylens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/policylens/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/policylens/internal/adapters/driving/cli"
	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/core/services"
	"github.com/custodia-labs/policylens/internal/logger"
	"github.com/custodia-labs/policylens/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal; credentials may come from the shell.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator(), services.EnvCredentials)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	journal, err := openJournal(settings.Journal)
	if err != nil {
		return err
	}
	defer journal.Close()

	prompts, err := file.NewPromptStore("", services.DefaultPrompts())
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetHistoryService(services.NewHistoryService(journal))
	cli.SetRuntimeFactory(func(opts cli.RuntimeOptions) (*cli.Runtime, error) {
		return buildRuntime(settings, journal, prompts, opts)
	})

	return cli.Execute(ctx)
}

// openJournal opens the SQLite journal, or an in-memory one when disabled.
func openJournal(cfg domain.JournalSettings) (driven.AnswerJournal, error) {
	if !cfg.Enabled {
		return memory.NewJournal(), nil
	}
	store, err := sqlite.NewStore(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening answer journal: %w", err)
	}
	return store, nil
}

// buildRuntime wires the answer pipeline for one command.
func buildRuntime(
	settings *domain.AppSettings,
	journal driven.AnswerJournal,
	prompts *file.PromptStore,
	opts cli.RuntimeOptions,
) (*cli.Runtime, error) {
	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunker)
	if err != nil {
		return nil, fmt.Errorf("building chunker: %w", err)
	}

	aiServices, err := ai.NewServices(settings, opts.Strict)
	if err != nil {
		return nil, err
	}

	topK := settings.Retrieval.TopK
	if opts.TopK > 0 {
		topK = opts.TopK
	}

	orchestrator, err := services.NewOrchestrator(services.OrchestratorConfig{
		Extractor: extract.NewDefault(),
		Pipeline:  pipeline,
		Embedding: aiServices.Embedding,
		LLM:       aiServices.LLM,
		Prompts:   prompts,
		Journal:   journal,
		TopK:      topK,
	})
	if err != nil {
		aiServices.Close()
		return nil, err
	}

	return &cli.Runtime{
		Answers:      orchestrator,
		Warnings:     aiServices.Warnings,
		WatchPrompts: prompts.Watch,
		Close: func() error {
			aiServices.Close()
			return nil
		},
	}, nil
}
