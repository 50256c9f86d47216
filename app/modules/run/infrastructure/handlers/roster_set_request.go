package runhandlers

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
)

// HandleRosterSetRequest changes a submitter's active roster.
func (h *RunHandlers) HandleRosterSetRequest(msg *message.Message) ([]*message.Message, error) {
	wrapped := h.handlerWrapper(
		"HandleRosterSetRequest",
		&runevents.RosterSetRequestPayload{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*runevents.RosterSetRequestPayload)
			if !ok {
				return nil, errors.New("invalid payload type for HandleRosterSetRequest")
			}

			result, err := h.service.SetActiveRoster(ctx, *request)
			if err != nil {
				return nil, err
			}

			if result.Failure != nil {
				out, err := h.helpers.CreateResultMessage(msg, result.Failure, runevents.RosterSetFailed)
				if err != nil {
					return nil, err
				}
				return []*message.Message{out}, nil
			}

			out, err := h.helpers.CreateResultMessage(msg, result.Success, runevents.RosterSet)
			if err != nil {
				return nil, err
			}
			return []*message.Message{out}, nil
		},
	)
	return wrapped(msg)
}
