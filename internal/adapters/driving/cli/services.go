package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policylens/internal/core/ports/driving"
	"github.com/custodia-labs/policylens/internal/logger"
)

// RuntimeOptions are the per-command knobs applied when building the answer
// pipeline.
type RuntimeOptions struct {
	// Strict makes a missing provider credential fatal instead of degrading
	// to keyword analysis.
	Strict bool

	// TopK overrides the configured number of retrieved passages when positive.
	TopK int
}

// Runtime is an answer pipeline built for one command invocation.
type Runtime struct {
	// Answers opens question-answering sessions.
	Answers driving.AnswerService

	// Warnings explain services that were disabled at startup.
	Warnings []string

	// WatchPrompts reloads prompt templates on change until ctx ends. Optional.
	WatchPrompts func(ctx context.Context) error

	// Close releases provider clients. Optional.
	Close func() error
}

// RuntimeFactory builds the answer pipeline.
type RuntimeFactory func(opts RuntimeOptions) (*Runtime, error)

var (
	settingsService driving.SettingsService
	historyService  driving.HistoryService
	newRuntime      RuntimeFactory
)

// SetSettingsService sets the settings service for CLI commands.
func SetSettingsService(svc driving.SettingsService) {
	settingsService = svc
}

// SetHistoryService sets the answer history service for CLI commands.
func SetHistoryService(svc driving.HistoryService) {
	historyService = svc
}

// SetRuntimeFactory sets the factory used by ask, chat and mcp serve.
func SetRuntimeFactory(factory RuntimeFactory) {
	newRuntime = factory
}

// openRuntime builds the answer pipeline and reports startup warnings on stderr.
func openRuntime(cmd *cobra.Command, opts RuntimeOptions) (*Runtime, error) {
	if newRuntime == nil {
		return nil, errors.New("answer service not configured")
	}
	rt, err := newRuntime(opts)
	if err != nil {
		return nil, err
	}
	if rt == nil || rt.Answers == nil {
		return nil, errors.New("answer service not configured")
	}
	for _, w := range rt.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	if len(rt.Warnings) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Answers will use keyword analysis where a service is missing.")
	}
	return rt, nil
}

func (r *Runtime) close() {
	if r.Close != nil {
		if err := r.Close(); err != nil {
			logger.Warn("closing services: %v", err)
		}
	}
}

// watch starts prompt hot reload in the background.
func (r *Runtime) watch(ctx context.Context) {
	if r.WatchPrompts == nil {
		return
	}
	go func() {
		if err := r.WatchPrompts(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("prompt watcher stopped: %v", err)
		}
	}()
}
