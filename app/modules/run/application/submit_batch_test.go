package runservice

import (
	"context"
	"errors"
	"testing"
	"time"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
)

func testBatch() runevents.BatchSubmittedPayload {
	return runevents.BatchSubmittedPayload{
		SubmitterID:    920837465,
		SubmitterLabel: "Trainer#1234",
		Records: []rundomain.RawRecord{
			{Name: "Special Week", Team: "Mile", Score: 46730},
			{Name: "Maruzcnsky", Team: "Sprint", Score: 41200},
		},
	}
}

func TestSubmitBatchCreatesPendingRun(t *testing.T) {
	repo := &fakeRunDB{}
	bus := newFakeEventBus()
	svc := newTestService(t, repo, bus, nil)

	result, err := svc.SubmitBatch(context.Background(), testBatch())
	if err != nil {
		t.Fatalf("SubmitBatch failed: %v", err)
	}

	success, ok := result.Success.(*runevents.PendingCreatedPayload)
	if !ok {
		t.Fatalf("expected PendingCreatedPayload, got %T", result.Success)
	}
	if success.RunID != "2025-W46-EVT-001" {
		t.Errorf("unexpected run id %q", success.RunID)
	}
	if len(success.Records) != 2 {
		t.Errorf("expected 2 corrected records, got %d", len(success.Records))
	}
	if success.Records[1].Name != "Maruzensky" {
		t.Errorf("expected fuzzy-corrected second record, got %q", success.Records[1].Name)
	}
	if !success.AnyAutoCorrected {
		t.Error("expected auto-corrected flag on batch")
	}
	if svc.PendingCount() != 1 {
		t.Errorf("expected one registered controller, got %d", svc.PendingCount())
	}
}

func TestSubmitBatchEmptyBatchFails(t *testing.T) {
	repo := &fakeRunDB{}
	svc := newTestService(t, repo, newFakeEventBus(), nil)

	result, err := svc.SubmitBatch(context.Background(), runevents.BatchSubmittedPayload{SubmitterID: 1})
	if err != nil {
		t.Fatalf("SubmitBatch returned error for empty batch: %v", err)
	}

	failure, ok := result.Failure.(*runevents.SubmissionFailedPayload)
	if !ok {
		t.Fatalf("expected SubmissionFailedPayload, got %T", result.Failure)
	}
	if failure.Reason != ErrEmptyBatch.Error() {
		t.Errorf("unexpected reason %q", failure.Reason)
	}
	if repo.callCount("CreatePending") != 0 {
		t.Error("empty batch must not reach storage")
	}
}

func TestSubmitBatchRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Run.SubmitInterval = time.Hour
	cfg.Run.SubmitBurst = 1

	repo := &fakeRunDB{}
	svc := newTestService(t, repo, newFakeEventBus(), cfg)

	if result, err := svc.SubmitBatch(context.Background(), testBatch()); err != nil || result.Failure != nil {
		t.Fatalf("first submission should pass, result=%+v err=%v", result, err)
	}

	result, err := svc.SubmitBatch(context.Background(), testBatch())
	if err != nil {
		t.Fatalf("throttled submission returned error: %v", err)
	}
	failure, ok := result.Failure.(*runevents.SubmissionFailedPayload)
	if !ok {
		t.Fatalf("expected SubmissionFailedPayload, got %T", result.Failure)
	}
	if failure.Reason != ErrRateLimited.Error() {
		t.Errorf("unexpected reason %q", failure.Reason)
	}
	if repo.callCount("CreatePending") != 1 {
		t.Errorf("throttled batch must not reach storage, got %d calls", repo.callCount("CreatePending"))
	}
}

func TestSubmitBatchStorageFailurePropagates(t *testing.T) {
	boom := errors.New("insert failed")
	repo := &fakeRunDB{
		CreatePendingFunc: func(context.Context, rundb.PendingRun) (*rundb.Run, error) {
			return nil, boom
		},
	}
	svc := newTestService(t, repo, newFakeEventBus(), nil)

	_, err := svc.SubmitBatch(context.Background(), testBatch())
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage error surfaced, got %v", err)
	}
	if svc.PendingCount() != 0 {
		t.Error("failed submission must not register a controller")
	}
}

func TestSubmitBatchUsesActiveRoster(t *testing.T) {
	repo := &fakeRunDB{
		GetActiveRosterFunc: func(context.Context, int64) (int64, error) { return 3, nil },
	}
	svc := newTestService(t, repo, newFakeEventBus(), nil)

	result, err := svc.SubmitBatch(context.Background(), testBatch())
	if err != nil {
		t.Fatalf("SubmitBatch failed: %v", err)
	}
	success := result.Success.(*runevents.PendingCreatedPayload)
	if success.RosterID != 3 {
		t.Errorf("expected roster 3, got %d", success.RosterID)
	}
}

func TestSubmitBatchExplicitRosterSkipsSettings(t *testing.T) {
	repo := &fakeRunDB{
		GetActiveRosterFunc: func(context.Context, int64) (int64, error) { return 3, nil },
	}
	svc := newTestService(t, repo, newFakeEventBus(), nil)

	batch := testBatch()
	roster := int64(5)
	batch.RosterID = &roster

	result, err := svc.SubmitBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("SubmitBatch failed: %v", err)
	}
	success := result.Success.(*runevents.PendingCreatedPayload)
	if success.RosterID != 5 {
		t.Errorf("expected roster 5, got %d", success.RosterID)
	}
	if repo.callCount("GetActiveRoster") != 0 {
		t.Error("explicit roster must not hit settings")
	}
}

func TestTimeoutPublishesRejection(t *testing.T) {
	cfg := testConfig()
	cfg.Run.DecisionTimeout = 20 * time.Millisecond

	repo := &fakeRunDB{}
	bus := newFakeEventBus()
	svc := newTestService(t, repo, bus, cfg)

	if _, err := svc.SubmitBatch(context.Background(), testBatch()); err != nil {
		t.Fatalf("SubmitBatch failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for bus.publishedTo(runevents.RunRejected) == 0 {
		select {
		case <-deadline:
			t.Fatal("timeout rejection was never published")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if svc.PendingCount() != 0 {
		t.Errorf("expired controller must be deregistered, got %d pending", svc.PendingCount())
	}
}

func TestLeaderboardDefaultsToCurrentPeriod(t *testing.T) {
	var seenPeriod string
	repo := &fakeRunDB{
		LeaderboardFunc: func(_ context.Context, periodKey string) ([]rundb.LeaderboardRow, error) {
			seenPeriod = periodKey
			return []rundb.LeaderboardRow{{SubmitterID: 1, BestScore: 100}}, nil
		},
	}
	svc := newTestService(t, repo, newFakeEventBus(), nil)

	rows, err := svc.Leaderboard(context.Background(), "")
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	want := svc.currentPeriodKey(time.Now())
	if seenPeriod != want {
		t.Errorf("expected current period %q, got %q", want, seenPeriod)
	}
}
