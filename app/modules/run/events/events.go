// Package runevents defines the topics and payloads of the run module's
// message surface. Inbound topics carry requests from the ingestion edge
// (OCR pipeline, chat gateway); outbound topics report the outcome.
package runevents

import (
	"time"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
)

// Inbound topics.
const (
	RunBatchSubmitted    = "run.batch.submitted"
	RunDecisionRequest   = "run.decision.requested"
	RunRecordEditRequest = "run.record.edit.requested"
	RosterSetRequest     = "roster.set.requested"
)

// Outbound topics.
const (
	RunPendingCreated   = "run.pending.created"
	RunSubmissionFailed = "run.submission.failed"
	RunApproved         = "run.approved"
	RunRejected         = "run.rejected"
	RunDecisionFailed   = "run.decision.failed"
	RunRecordEdited     = "run.record.edited"
	RunRecordEditFailed = "run.record.edit.failed"
	RosterSet           = "roster.set"
	RosterSetFailed     = "roster.set.failed"
)

// Decision actions accepted on RunDecisionRequest.
const (
	DecisionConfirm = "confirm"
	DecisionCancel  = "cancel"
)

// BatchSubmittedPayload is a parsed OCR batch awaiting validation. A nil
// RosterID falls back to the submitter's stored active roster.
type BatchSubmittedPayload struct {
	SubmitterID    int64                 `json:"submitter_id"`
	SubmitterLabel string                `json:"submitter_label"`
	RosterID       *int64                `json:"roster_id,omitempty"`
	Records        []rundomain.RawRecord `json:"records"`
}

// PendingCreatedPayload announces a persisted pending run and its
// correction summary, so the edge can render the review prompt.
type PendingCreatedPayload struct {
	RunID              string                      `json:"run_id"`
	SubmitterID        int64                       `json:"submitter_id"`
	RosterID           int64                       `json:"roster_id"`
	PeriodKey          string                      `json:"period_key"`
	Records            []rundomain.CorrectedRecord `json:"records"`
	LowConfidenceCount int                         `json:"low_confidence_count"`
	AnyAutoCorrected   bool                        `json:"any_auto_corrected"`
	ExpiresAt          time.Time                   `json:"expires_at"`
}

// SubmissionFailedPayload reports a batch that never became a pending run.
type SubmissionFailedPayload struct {
	SubmitterID int64  `json:"submitter_id"`
	Reason      string `json:"reason"`
}

// DecisionRequestPayload asks for a confirm or cancel on a pending run.
type DecisionRequestPayload struct {
	RunID   string `json:"run_id"`
	ActorID int64  `json:"actor_id"`
	Action  string `json:"action"`
}

// DecisionResultPayload reports a terminal transition. ByTimeout is true
// when the auto-reject timer resolved the run instead of the submitter.
type DecisionResultPayload struct {
	RunID       string `json:"run_id"`
	SubmitterID int64  `json:"submitter_id"`
	Status      string `json:"status"`
	ByTimeout   bool   `json:"by_timeout"`
}

// DecisionFailedPayload reports a decision request that could not be applied.
type DecisionFailedPayload struct {
	RunID   string `json:"run_id"`
	ActorID int64  `json:"actor_id"`
	Action  string `json:"action"`
	Reason  string `json:"reason"`
}

// RecordEditRequestPayload corrects one score row of a pending run. The row
// is addressed by the name it currently carries; unset fields keep their
// stored values.
type RecordEditRequestPayload struct {
	RunID        string  `json:"run_id"`
	ActorID      int64   `json:"actor_id"`
	OriginalName string  `json:"original_name"`
	Name         *string `json:"name,omitempty"`
	Team         *string `json:"team,omitempty"`
	Score        *int64  `json:"score,omitempty"`
}

// RecordEditedPayload reports an applied edit with the row's new values.
type RecordEditedPayload struct {
	RunID        string                    `json:"run_id"`
	OriginalName string                    `json:"original_name"`
	Record       rundomain.CorrectedRecord `json:"record"`
}

// RecordEditFailedPayload reports a rejected or failed edit.
type RecordEditFailedPayload struct {
	RunID        string `json:"run_id"`
	ActorID      int64  `json:"actor_id"`
	OriginalName string `json:"original_name"`
	Reason       string `json:"reason"`
}

// RosterSetRequestPayload changes a submitter's active roster.
type RosterSetRequestPayload struct {
	SubmitterID int64   `json:"submitter_id"`
	RosterID    int64   `json:"roster_id"`
	DisplayName *string `json:"display_name,omitempty"`
}

// RosterSetPayload confirms the new active roster.
type RosterSetPayload struct {
	SubmitterID int64 `json:"submitter_id"`
	RosterID    int64 `json:"roster_id"`
}

// RosterSetFailedPayload reports a roster change that was not applied.
type RosterSetFailedPayload struct {
	SubmitterID int64  `json:"submitter_id"`
	RosterID    int64  `json:"roster_id"`
	Reason      string `json:"reason"`
}
