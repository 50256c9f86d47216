package runservice

import (
	"context"

	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
)

// SetActiveRoster changes the roster future submissions are attributed to.
// Runs already persisted keep the roster they were submitted under.
func (s *RunService) SetActiveRoster(ctx context.Context, payload runevents.RosterSetRequestPayload) (RunOperationResult, error) {
	return s.withTelemetry(ctx, "SetActiveRoster", "", func(ctx context.Context) (RunOperationResult, error) {
		if payload.RosterID < 1 {
			return RunOperationResult{Failure: &runevents.RosterSetFailedPayload{
				SubmitterID: payload.SubmitterID,
				RosterID:    payload.RosterID,
				Reason:      ErrInvalidRoster.Error(),
			}}, nil
		}

		if err := s.repo.SetActiveRoster(ctx, payload.SubmitterID, payload.RosterID, payload.DisplayName); err != nil {
			return RunOperationResult{}, err
		}

		return RunOperationResult{Success: &runevents.RosterSetPayload{
			SubmitterID: payload.SubmitterID,
			RosterID:    payload.RosterID,
		}}, nil
	})
}
