package runservice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace/noop"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
	"github.com/Paddock-Club/trackmaster/config"
	"github.com/Paddock-Club/trackmaster/internal/observability"
	runmetrics "github.com/Paddock-Club/trackmaster/internal/observability/metrics"
)

// fakeRunDB is a programmable rundb.RunDB. Unset funcs fall back to benign
// defaults so tests only wire what they assert on.
type fakeRunDB struct {
	mu    sync.Mutex
	calls []string

	CreatePendingFunc       func(ctx context.Context, pending rundb.PendingRun) (*rundb.Run, error)
	SetStatusFunc           func(ctx context.Context, runID string, status rundomain.Status) error
	GetRunFunc              func(ctx context.Context, runID string) (*rundb.Run, error)
	UpdateScoreFunc         func(ctx context.Context, runID, originalName, name, team string, score int64, confidence string) (*rundb.RunScore, error)
	DeletePendingBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)
	GetVocabularyFunc       func(ctx context.Context) (rundomain.Vocabulary, error)
	AddVocabularyEntryFunc  func(ctx context.Context, name string) error
	GetActiveRosterFunc     func(ctx context.Context, submitterID int64) (int64, error)
	SetActiveRosterFunc     func(ctx context.Context, submitterID int64, rosterID int64, displayName *string) error
	LeaderboardFunc         func(ctx context.Context, periodKey string) ([]rundb.LeaderboardRow, error)
}

func (f *fakeRunDB) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeRunDB) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeRunDB) CreatePending(ctx context.Context, pending rundb.PendingRun) (*rundb.Run, error) {
	f.record("CreatePending")
	if f.CreatePendingFunc != nil {
		return f.CreatePendingFunc(ctx, pending)
	}
	run := &rundb.Run{
		ID:             "2025-W46-EVT-001",
		SubmitterID:    pending.SubmitterID,
		SubmitterLabel: pending.SubmitterLabel,
		RosterID:       pending.RosterID,
		PeriodKey:      "2025-W46",
		CreatedAt:      pending.SubmittedAt,
		Status:         rundomain.StatusPending,
	}
	for i, rec := range pending.Records {
		run.Scores = append(run.Scores, &rundb.RunScore{
			ID:         int64(i + 1),
			RunID:      run.ID,
			Name:       rec.Name,
			Team:       rec.Team,
			Score:      rec.Score,
			Confidence: string(rec.Confidence),
		})
	}
	return run, nil
}

func (f *fakeRunDB) SetStatus(ctx context.Context, runID string, status rundomain.Status) error {
	f.record("SetStatus")
	if f.SetStatusFunc != nil {
		return f.SetStatusFunc(ctx, runID, status)
	}
	return nil
}

func (f *fakeRunDB) GetRun(ctx context.Context, runID string) (*rundb.Run, error) {
	f.record("GetRun")
	if f.GetRunFunc != nil {
		return f.GetRunFunc(ctx, runID)
	}
	return nil, rundb.ErrNotFound
}

func (f *fakeRunDB) UpdateScore(ctx context.Context, runID, originalName, name, team string, score int64, confidence string) (*rundb.RunScore, error) {
	f.record("UpdateScore")
	if f.UpdateScoreFunc != nil {
		return f.UpdateScoreFunc(ctx, runID, originalName, name, team, score, confidence)
	}
	return &rundb.RunScore{
		RunID:      runID,
		Name:       name,
		Team:       team,
		Score:      score,
		Confidence: confidence,
	}, nil
}

func (f *fakeRunDB) DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.record("DeletePendingBefore")
	if f.DeletePendingBeforeFunc != nil {
		return f.DeletePendingBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}

func (f *fakeRunDB) GetVocabulary(ctx context.Context) (rundomain.Vocabulary, error) {
	f.record("GetVocabulary")
	if f.GetVocabularyFunc != nil {
		return f.GetVocabularyFunc(ctx)
	}
	return rundomain.NewVocabulary([]string{"Special Week", "Gold Ship", "Maruzensky"}), nil
}

func (f *fakeRunDB) AddVocabularyEntry(ctx context.Context, name string) error {
	f.record("AddVocabularyEntry")
	if f.AddVocabularyEntryFunc != nil {
		return f.AddVocabularyEntryFunc(ctx, name)
	}
	return nil
}

func (f *fakeRunDB) GetActiveRoster(ctx context.Context, submitterID int64) (int64, error) {
	f.record("GetActiveRoster")
	if f.GetActiveRosterFunc != nil {
		return f.GetActiveRosterFunc(ctx, submitterID)
	}
	return 1, nil
}

func (f *fakeRunDB) SetActiveRoster(ctx context.Context, submitterID int64, rosterID int64, displayName *string) error {
	f.record("SetActiveRoster")
	if f.SetActiveRosterFunc != nil {
		return f.SetActiveRosterFunc(ctx, submitterID, rosterID, displayName)
	}
	return nil
}

func (f *fakeRunDB) Leaderboard(ctx context.Context, periodKey string) ([]rundb.LeaderboardRow, error) {
	f.record("Leaderboard")
	if f.LeaderboardFunc != nil {
		return f.LeaderboardFunc(ctx, periodKey)
	}
	return nil, nil
}

// fakeEventBus records published topics.
type fakeEventBus struct {
	mu        sync.Mutex
	published map[string][]*message.Message
}

func newFakeEventBus() *fakeEventBus {
	return &fakeEventBus{published: make(map[string][]*message.Message)}
}

func (f *fakeEventBus) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[topic] = append(f.published[topic], messages...)
	return nil
}

func (f *fakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *fakeEventBus) Close() error { return nil }

func (f *fakeEventBus) publishedTo(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published[topic])
}

func testConfig() *config.Config {
	return &config.Config{
		Run: config.RunConfig{
			ResetDay:            "monday",
			ResetHourUTC:        9,
			CorrectionThreshold: 85,
			// Timers and throttles are disabled unless a test opts in.
			DecisionTimeout: 0,
			SubmitInterval:  0,
		},
	}
}

func newTestService(t *testing.T, repo *fakeRunDB, bus *fakeEventBus, cfg *config.Config) *RunService {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	svc, err := NewRunService(
		repo,
		bus,
		observability.NoOpLogger,
		runmetrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		cfg,
	)
	if err != nil {
		t.Fatalf("NewRunService failed: %v", err)
	}
	return svc
}

var _ rundb.RunDB = (*fakeRunDB)(nil)
