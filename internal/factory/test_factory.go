package factory

import (
	"time"

	"github.com/mcoot/partylobby/internal/dependencies/mocks"
	"github.com/mcoot/partylobby/internal/storage/memory"
	"github.com/mcoot/partylobby/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Liveness sweeps only run when MockClock.Tick is called.
func NewTestApp(capacity int) *TestApp {
	return NewTestAppWithConfig(Config{DefaultCapacity: capacity})
}

// NewTestAppWithConfig is NewTestApp with full lobby settings. Storage and
// logger settings in cfg are ignored.
func NewTestAppWithConfig(cfg Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(store, mockClock, mockRandom, cfg, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}
