package runhandlers

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
)

// HandleBatchSubmitted turns an OCR batch into a pending run awaiting the
// submitter's decision.
func (h *RunHandlers) HandleBatchSubmitted(msg *message.Message) ([]*message.Message, error) {
	wrapped := h.handlerWrapper(
		"HandleBatchSubmitted",
		&runevents.BatchSubmittedPayload{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			batch, ok := payload.(*runevents.BatchSubmittedPayload)
			if !ok {
				return nil, errors.New("invalid payload type for HandleBatchSubmitted")
			}

			result, err := h.service.SubmitBatch(ctx, *batch)
			if err != nil {
				return nil, err
			}

			if result.Failure != nil {
				out, err := h.helpers.CreateResultMessage(msg, result.Failure, runevents.RunSubmissionFailed)
				if err != nil {
					return nil, err
				}
				return []*message.Message{out}, nil
			}

			out, err := h.helpers.CreateResultMessage(msg, result.Success, runevents.RunPendingCreated)
			if err != nil {
				return nil, err
			}
			return []*message.Message{out}, nil
		},
	)
	return wrapped(msg)
}
