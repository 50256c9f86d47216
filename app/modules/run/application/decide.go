package runservice

import (
	"context"
	"errors"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
)

// Decide applies a confirm or cancel to a pending run. The success path
// publishes run.approved / run.rejected through the controller's resolution
// callback; this method only reports failures back to the requester.
func (s *RunService) Decide(ctx context.Context, payload runevents.DecisionRequestPayload) (RunOperationResult, error) {
	return s.withTelemetry(ctx, "Decide", payload.RunID, func(ctx context.Context) (RunOperationResult, error) {
		failure := func(reason string) RunOperationResult {
			return RunOperationResult{Failure: &runevents.DecisionFailedPayload{
				RunID:   payload.RunID,
				ActorID: payload.ActorID,
				Action:  payload.Action,
				Reason:  reason,
			}}
		}

		controller := s.registry.Get(payload.RunID)
		if controller == nil {
			return failure("run not found or already decided"), nil
		}

		var err error
		switch payload.Action {
		case runevents.DecisionConfirm:
			err = controller.Confirm(ctx, payload.ActorID)
		case runevents.DecisionCancel:
			err = controller.Cancel(ctx, payload.ActorID)
		default:
			return failure(ErrInvalidAction.Error()), nil
		}

		switch {
		case err == nil:
			return RunOperationResult{Success: &runevents.DecisionResultPayload{
				RunID:       payload.RunID,
				SubmitterID: controller.SubmitterID(),
				Status:      controller.State().String(),
			}}, nil
		case errors.Is(err, rundomain.ErrAlreadyDecided):
			return failure("run already decided"), nil
		case errors.Is(err, rundomain.ErrUnauthorized):
			return failure("only the submitter may decide this run"), nil
		default:
			// Storage fault: the run is still awaiting, the request is
			// retryable.
			return RunOperationResult{}, err
		}
	})
}
