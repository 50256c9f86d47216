package runhandlers

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
)

// HandleDecisionRequest applies a confirm or cancel. The approved/rejected
// events are published by the lifecycle resolution path, so only failures
// produce a message here.
func (h *RunHandlers) HandleDecisionRequest(msg *message.Message) ([]*message.Message, error) {
	wrapped := h.handlerWrapper(
		"HandleDecisionRequest",
		&runevents.DecisionRequestPayload{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*runevents.DecisionRequestPayload)
			if !ok {
				return nil, errors.New("invalid payload type for HandleDecisionRequest")
			}

			result, err := h.service.Decide(ctx, *request)
			if err != nil {
				return nil, err
			}

			if result.Failure != nil {
				out, err := h.helpers.CreateResultMessage(msg, result.Failure, runevents.RunDecisionFailed)
				if err != nil {
					return nil, err
				}
				return []*message.Message{out}, nil
			}
			return nil, nil
		},
	)
	return wrapped(msg)
}
