package runhandlers

import "github.com/ThreeDotsLabs/watermill/message"

// Handlers is the set of message handlers the run router registers.
type Handlers interface {
	HandleBatchSubmitted(msg *message.Message) ([]*message.Message, error)
	HandleDecisionRequest(msg *message.Message) ([]*message.Message, error)
	HandleRecordEditRequest(msg *message.Message) ([]*message.Message, error)
	HandleRosterSetRequest(msg *message.Message) ([]*message.Message, error)
}
