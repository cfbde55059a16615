package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/gamecenter/minesweeper/internal/dependencies/mocks"
	"github.com/gamecenter/minesweeper/internal/services/auth"
	"github.com/gamecenter/minesweeper/internal/storage/memory"
)

// TestEmbedSecret is the embed token key used by test apps
const TestEmbedSecret = "test-embed-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.DefaultConfig()
	authCfg.EmbedSecret = TestEmbedSecret
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, authCfg, "", logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
