// Package utils carries the message plumbing shared by all handlers:
// payload (un)marshalling and result-message construction.
package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/Paddock-Club/trackmaster/internal/observability/attr"
)

// TopicMetadataKey is where a handler records the topic its result message
// should be published to; the router reads it back.
const TopicMetadataKey = "topic"

// Helpers is the handler-facing slice of message plumbing.
type Helpers interface {
	UnmarshalPayload(msg *message.Message, out interface{}) error
	CreateResultMessage(original *message.Message, payload interface{}, topic string) (*message.Message, error)
}

// HelperImpl implements Helpers with JSON payloads.
type HelperImpl struct {
	Logger *slog.Logger
}

func NewHelper(logger *slog.Logger) Helpers {
	return &HelperImpl{Logger: logger}
}

// UnmarshalPayload decodes a message body into out.
func (h *HelperImpl) UnmarshalPayload(msg *message.Message, out interface{}) error {
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		if h.Logger != nil {
			h.Logger.Error("Failed to unmarshal payload",
				attr.CorrelationIDFromMsg(msg),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
		}
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// CreateResultMessage builds an outbound message carrying payload, tagged
// with the publish topic and the originating correlation id.
func (h *HelperImpl) CreateResultMessage(original *message.Message, payload interface{}, topic string) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result payload for topic %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(TopicMetadataKey, topic)
	if original != nil {
		middleware.SetCorrelationID(middleware.MessageCorrelationID(original), msg)
		if causation := original.UUID; causation != "" {
			msg.Metadata.Set("causation_id", causation)
		}
	} else {
		middleware.SetCorrelationID(watermill.NewUUID(), msg)
	}
	return msg, nil
}

// MiddlewareHelpers builds the router middleware common to every module.
type MiddlewareHelpers interface {
	CommonMetadataMiddleware(module string) message.HandlerMiddleware
}

type middlewareHelper struct{}

func NewMiddlewareHelper() MiddlewareHelpers {
	return &middlewareHelper{}
}

// CommonMetadataMiddleware stamps each outgoing message with the module that
// produced it, so consumers can attribute traffic without decoding payloads.
func (middlewareHelper) CommonMetadataMiddleware(module string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			produced, err := h(msg)
			for _, m := range produced {
				if m.Metadata.Get("produced_by") == "" {
					m.Metadata.Set("produced_by", module)
				}
			}
			return produced, err
		}
	}
}
