package runservice

import (
	"context"
	"errors"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
)

// EditRecord rewrites one score row of a pending run. Only the submitter may
// edit, and only while the run is awaiting a decision; the edit window closes
// the instant a terminal transition wins the controller's critical section.
func (s *RunService) EditRecord(ctx context.Context, payload runevents.RecordEditRequestPayload) (RunOperationResult, error) {
	return s.withTelemetry(ctx, "EditRecord", payload.RunID, func(ctx context.Context) (RunOperationResult, error) {
		failure := func(reason string) RunOperationResult {
			return RunOperationResult{Failure: &runevents.RecordEditFailedPayload{
				RunID:        payload.RunID,
				ActorID:      payload.ActorID,
				OriginalName: payload.OriginalName,
				Reason:       reason,
			}}
		}

		controller := s.registry.Get(payload.RunID)
		if controller == nil {
			return failure("run not found or already decided"), nil
		}

		var updated *rundb.RunScore
		apply := func(ctx context.Context) error {
			run, err := s.repo.GetRun(ctx, payload.RunID)
			if err != nil {
				return err
			}

			var current *rundb.RunScore
			for _, score := range run.Scores {
				if score.Name == payload.OriginalName {
					current = score
					break
				}
			}
			if current == nil {
				return rundb.ErrNotFound
			}

			name := current.Name
			team := current.Team
			score := current.Score
			confidence := current.Confidence
			if payload.Name != nil {
				name = *payload.Name
				// A human-supplied name is re-resolved against the
				// vocabulary rather than trusted blindly.
				vocab, err := s.repo.GetVocabulary(ctx)
				if err != nil {
					return err
				}
				if vocab.Contains(name) {
					confidence = string(rundomain.MatchExact)
				} else {
					confidence = string(rundomain.MatchLowConfidence)
				}
			}
			if payload.Team != nil {
				team = *payload.Team
			}
			if payload.Score != nil {
				score = *payload.Score
			}

			updated, err = s.repo.UpdateScore(ctx, payload.RunID, payload.OriginalName, name, team, score, confidence)
			return err
		}

		err := controller.Edit(ctx, payload.ActorID, apply)
		switch {
		case err == nil:
			return RunOperationResult{Success: &runevents.RecordEditedPayload{
				RunID:        payload.RunID,
				OriginalName: payload.OriginalName,
				Record: rundomain.CorrectedRecord{
					Name:         updated.Name,
					Team:         updated.Team,
					Epithet:      updated.Epithet,
					Score:        updated.Score,
					OriginalName: updated.OriginalName,
					Confidence:   rundomain.MatchConfidence(updated.Confidence),
				},
			}}, nil
		case errors.Is(err, rundomain.ErrAlreadyDecided):
			return failure("run already decided"), nil
		case errors.Is(err, rundomain.ErrUnauthorized):
			return failure("only the submitter may edit this run"), nil
		case errors.Is(err, rundb.ErrNotFound):
			return failure("record not found"), nil
		default:
			return RunOperationResult{}, err
		}
	})
}
