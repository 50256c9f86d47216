package runhandlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	runservice "github.com/Paddock-Club/trackmaster/app/modules/run/application"
	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
	"github.com/Paddock-Club/trackmaster/internal/utils"
)

func newJSONMessage(t *testing.T, payload interface{}) *message.Message {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return message.NewMessage(uuid.New().String(), body)
}

func TestHandleDecisionRequestSuccessProducesNothing(t *testing.T) {
	svc := &fakeService{
		DecideFunc: func(_ context.Context, payload runevents.DecisionRequestPayload) (runservice.RunOperationResult, error) {
			if payload.Action != runevents.DecisionConfirm {
				t.Errorf("unexpected action %q", payload.Action)
			}
			return runservice.RunOperationResult{Success: &runevents.DecisionResultPayload{
				RunID:  payload.RunID,
				Status: "approved",
			}}, nil
		},
	}
	handlers := newTestHandlers(t, svc)

	out, err := handlers.HandleDecisionRequest(newJSONMessage(t, runevents.DecisionRequestPayload{
		RunID:   "2025-W46-EVT-001",
		ActorID: 42,
		Action:  runevents.DecisionConfirm,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	// The lifecycle resolution path publishes run.approved; the handler
	// itself must stay silent on success.
	if len(out) != 0 {
		t.Fatalf("expected no result messages, got %d", len(out))
	}
}

func TestHandleDecisionRequestFailureProducesFailureMessage(t *testing.T) {
	svc := &fakeService{
		DecideFunc: func(_ context.Context, payload runevents.DecisionRequestPayload) (runservice.RunOperationResult, error) {
			return runservice.RunOperationResult{Failure: &runevents.DecisionFailedPayload{
				RunID:  payload.RunID,
				Reason: "run already decided",
			}}, nil
		},
	}
	handlers := newTestHandlers(t, svc)

	out, err := handlers.HandleDecisionRequest(newJSONMessage(t, runevents.DecisionRequestPayload{
		RunID:  "2025-W46-EVT-001",
		Action: runevents.DecisionCancel,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one failure message, got %d", len(out))
	}
	if topic := out[0].Metadata.Get(utils.TopicMetadataKey); topic != runevents.RunDecisionFailed {
		t.Errorf("expected topic %q, got %q", runevents.RunDecisionFailed, topic)
	}
}

func TestHandleRecordEditRequestSuccess(t *testing.T) {
	svc := &fakeService{
		EditRecordFunc: func(_ context.Context, payload runevents.RecordEditRequestPayload) (runservice.RunOperationResult, error) {
			return runservice.RunOperationResult{Success: &runevents.RecordEditedPayload{
				RunID:        payload.RunID,
				OriginalName: payload.OriginalName,
			}}, nil
		},
	}
	handlers := newTestHandlers(t, svc)

	out, err := handlers.HandleRecordEditRequest(newJSONMessage(t, runevents.RecordEditRequestPayload{
		RunID:        "2025-W46-EVT-001",
		OriginalName: "XyzAbc123",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one result message, got %d", len(out))
	}
	if topic := out[0].Metadata.Get(utils.TopicMetadataKey); topic != runevents.RunRecordEdited {
		t.Errorf("expected topic %q, got %q", runevents.RunRecordEdited, topic)
	}
}

func TestHandleRosterSetRequest(t *testing.T) {
	svc := &fakeService{
		SetActiveRosterFunc: func(_ context.Context, payload runevents.RosterSetRequestPayload) (runservice.RunOperationResult, error) {
			return runservice.RunOperationResult{Success: &runevents.RosterSetPayload{
				SubmitterID: payload.SubmitterID,
				RosterID:    payload.RosterID,
			}}, nil
		},
	}
	handlers := newTestHandlers(t, svc)

	out, err := handlers.HandleRosterSetRequest(newJSONMessage(t, runevents.RosterSetRequestPayload{
		SubmitterID: 42,
		RosterID:    2,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one result message, got %d", len(out))
	}
	if topic := out[0].Metadata.Get(utils.TopicMetadataKey); topic != runevents.RosterSet {
		t.Errorf("expected topic %q, got %q", runevents.RosterSet, topic)
	}

	var result runevents.RosterSetPayload
	if err := json.Unmarshal(out[0].Payload, &result); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	if result.RosterID != 2 {
		t.Errorf("expected roster 2, got %d", result.RosterID)
	}
}
