package runhandlers

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
)

// HandleRecordEditRequest rewrites one score row of a pending run.
func (h *RunHandlers) HandleRecordEditRequest(msg *message.Message) ([]*message.Message, error) {
	wrapped := h.handlerWrapper(
		"HandleRecordEditRequest",
		&runevents.RecordEditRequestPayload{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*runevents.RecordEditRequestPayload)
			if !ok {
				return nil, errors.New("invalid payload type for HandleRecordEditRequest")
			}

			result, err := h.service.EditRecord(ctx, *request)
			if err != nil {
				return nil, err
			}

			if result.Failure != nil {
				out, err := h.helpers.CreateResultMessage(msg, result.Failure, runevents.RunRecordEditFailed)
				if err != nil {
					return nil, err
				}
				return []*message.Message{out}, nil
			}

			out, err := h.helpers.CreateResultMessage(msg, result.Success, runevents.RunRecordEdited)
			if err != nil {
				return nil, err
			}
			return []*message.Message{out}, nil
		},
	)
	return wrapped(msg)
}
