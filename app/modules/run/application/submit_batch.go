package runservice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
	"github.com/Paddock-Club/trackmaster/internal/observability/attr"
)

// SubmitBatch validates and corrects an OCR batch, persists it as a pending
// run, and arms the auto-reject timer. The whole batch lands or none of it
// does.
func (s *RunService) SubmitBatch(ctx context.Context, payload runevents.BatchSubmittedPayload) (RunOperationResult, error) {
	return s.withTelemetry(ctx, "SubmitBatch", "", func(ctx context.Context) (RunOperationResult, error) {
		if len(payload.Records) == 0 {
			return RunOperationResult{Failure: &runevents.SubmissionFailedPayload{
				SubmitterID: payload.SubmitterID,
				Reason:      ErrEmptyBatch.Error(),
			}}, nil
		}

		if !s.allowSubmission(payload.SubmitterID) {
			s.logger.WarnContext(ctx, "Submission throttled",
				attr.SubmitterID(payload.SubmitterID),
			)
			return RunOperationResult{Failure: &runevents.SubmissionFailedPayload{
				SubmitterID: payload.SubmitterID,
				Reason:      ErrRateLimited.Error(),
			}}, nil
		}

		vocab, err := s.repo.GetVocabulary(ctx)
		if err != nil {
			return RunOperationResult{}, err
		}

		report := rundomain.Correct(payload.Records, vocab, s.correctionThreshold)
		s.metrics.RecordCorrectionBatch(ctx, len(report.Records), report.LowConfidenceCount, report.AnyAutoCorrected)

		var rosterID int64
		if payload.RosterID != nil {
			rosterID = *payload.RosterID
		} else {
			rosterID, err = s.repo.GetActiveRoster(ctx, payload.SubmitterID)
			if err != nil {
				return RunOperationResult{}, err
			}
		}

		now := time.Now().UTC()
		run, err := s.repo.CreatePending(ctx, rundb.PendingRun{
			SubmitterID:    payload.SubmitterID,
			SubmitterLabel: payload.SubmitterLabel,
			RosterID:       rosterID,
			SubmittedAt:    now,
			Records:        report.Records,
		})
		if err != nil {
			return RunOperationResult{}, err
		}

		controller := rundomain.NewLifecycleController(
			run.ID,
			payload.SubmitterID,
			decisionStore{repo: s.repo},
			s.decisionTimeout,
			s.logger,
			s.onRunResolved,
		)
		s.registry.Register(controller)

		s.logger.InfoContext(ctx, "Pending run created",
			attr.RunID(run.ID),
			attr.SubmitterID(payload.SubmitterID),
			attr.Int("records", len(report.Records)),
			attr.Int("low_confidence", report.LowConfidenceCount),
			attr.Bool("auto_corrected", report.AnyAutoCorrected),
		)

		return RunOperationResult{Success: &runevents.PendingCreatedPayload{
			RunID:              run.ID,
			SubmitterID:        payload.SubmitterID,
			RosterID:           rosterID,
			PeriodKey:          run.PeriodKey,
			Records:            report.Records,
			LowConfidenceCount: report.LowConfidenceCount,
			AnyAutoCorrected:   report.AnyAutoCorrected,
			ExpiresAt:          now.Add(s.decisionTimeout),
		}}, nil
	})
}

// onRunResolved runs once per terminal transition, off the controller's
// critical section: it publishes the outcome and drops the controller.
func (s *RunService) onRunResolved(runID string, state rundomain.RunState, byTimeout bool) {
	controller := s.registry.Get(runID)
	s.registry.Remove(runID)

	var submitterID int64
	if controller != nil {
		submitterID = controller.SubmitterID()
	}

	topic := runevents.RunRejected
	status := string(rundomain.StatusRejected)
	if state == rundomain.StateApproved {
		topic = runevents.RunApproved
		status = string(rundomain.StatusApproved)
	}

	ctx := context.Background()
	s.metrics.RecordDecision(ctx, status)
	if byTimeout {
		s.metrics.RecordTimeoutExpiry(ctx)
	}

	body, err := json.Marshal(&runevents.DecisionResultPayload{
		RunID:       runID,
		SubmitterID: submitterID,
		Status:      status,
		ByTimeout:   byTimeout,
	})
	if err != nil {
		s.logger.Error("Failed to marshal decision result", attr.RunID(runID), attr.Error(err))
		return
	}

	if err := s.eventBus.Publish(topic, message.NewMessage(watermill.NewUUID(), body)); err != nil {
		s.logger.Error("Failed to publish decision result",
			attr.RunID(runID),
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}
