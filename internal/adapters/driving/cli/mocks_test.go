package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driving"
)

// mockSession answers from a fixed table of outcomes.
type mockSession struct {
	doc      *domain.Document
	outcomes map[string]*domain.Outcome
	errs     map[string]error
	asked    []string
}

func (m *mockSession) ID() string                     { return "session-1" }
func (m *mockSession) Document() *domain.Document     { return m.doc }
func (m *mockSession) State() domain.SessionState     { return domain.StateIndexed }
func (m *mockSession) LastState() domain.SessionState { return domain.StateAnswered }

func (m *mockSession) Ask(_ context.Context, query string) (*domain.Outcome, error) {
	m.asked = append(m.asked, query)
	if err := m.errs[query]; err != nil {
		return nil, err
	}
	if out, ok := m.outcomes[query]; ok {
		return out, nil
	}
	return &domain.Outcome{
		Query: query,
		Tier:  domain.TierHeuristicText,
		Record: domain.AnswerRecord{
			Answer:    "No specific information found.",
			Rationale: "Keyword analysis of the full document text.",
		},
	}, nil
}

// mockAnswerService opens mockSession for any path except "missing.pdf".
type mockAnswerService struct {
	session *mockSession
	opened  []string
}

func (m *mockAnswerService) Open(_ context.Context, path string) (driving.Session, error) {
	m.opened = append(m.opened, path)
	if path == "missing.pdf" {
		return nil, errors.Join(domain.ErrExtraction, errors.New("open missing.pdf: no such file"))
	}
	return m.session, nil
}

func (m *mockAnswerService) OpenDocument(doc *domain.Document) driving.Session {
	m.session.doc = doc
	return m.session
}

// mockHistoryService serves entries from memory.
type mockHistoryService struct {
	entries []domain.JournalEntry
	err     error
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.JournalEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.entries) {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.JournalEntry, error) {
	for i := range m.entries {
		if m.entries[i].ID == id {
			return &m.entries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model string) error {
	m.settings.Embedding.Provider = p
	m.settings.Embedding.Model = model
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model string) error {
	m.settings.LLM.Provider = p
	m.settings.LLM.Model = model
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return m.pingErr }
func (m *mockSettingsService) ValidateLLMConfig() error        { return m.pingErr }

// withRuntime installs a runtime factory over answers for the duration of t.
func withRuntime(t *testing.T, answers driving.AnswerService, warnings ...string) *RuntimeOptions {
	t.Helper()
	got := &RuntimeOptions{}
	old := newRuntime
	newRuntime = func(opts RuntimeOptions) (*Runtime, error) {
		*got = opts
		return &Runtime{Answers: answers, Warnings: warnings}, nil
	}
	t.Cleanup(func() { newRuntime = old })
	return got
}

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	askJSON, askTopK, askStrict, askSamples = false, 0, false, false
	historyLimit, historyJSON = 10, false

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
