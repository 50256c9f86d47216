package rundb

import (
	"time"

	"github.com/uptrace/bun"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
)

// Run is the persisted run header. Score rows hang off it and are
// cascade-deleted with it.
type Run struct {
	bun.BaseModel `bun:"table:run_headers,alias:r"`

	ID             string           `bun:"id,pk,type:varchar(32)"`
	SubmitterID    int64            `bun:"submitter_id,notnull"`
	SubmitterLabel string           `bun:"submitter_label,notnull,type:varchar(128)"`
	RosterID       int64            `bun:"roster_id,notnull"`
	PeriodKey      string           `bun:"period_key,notnull,type:varchar(16)"`
	CreatedAt      time.Time        `bun:"created_at,notnull,default:current_timestamp"`
	Status         rundomain.Status `bun:"status,notnull,type:varchar(16)"`

	Scores []*RunScore `bun:"rel:has-many,join:id=run_id"`
}

// RunScore is one corrected score row of a run.
type RunScore struct {
	bun.BaseModel `bun:"table:run_scores,alias:s"`

	ID           int64   `bun:"id,pk,autoincrement"`
	RunID        string  `bun:"run_id,notnull,type:varchar(32)"`
	Name         string  `bun:"name,notnull,type:varchar(128)"`
	Epithet      *string `bun:"epithet,type:varchar(128)"`
	Team         string  `bun:"team,notnull,type:varchar(32)"`
	Score        int64   `bun:"score,notnull"`
	OriginalName *string `bun:"original_name,type:varchar(128)"`
	Confidence   string  `bun:"confidence,notnull,type:varchar(16)"`
}

// PeriodSequence is the per-period run counter. The counter only moves
// through the atomic upsert-and-increment in NextSequence.
type PeriodSequence struct {
	bun.BaseModel `bun:"table:period_sequences,alias:ps"`

	PeriodKey string `bun:"period_key,pk,type:varchar(16)"`
	Counter   int64  `bun:"counter,notnull,default:0"`
}

// VocabularyEntry is one canonical character name.
type VocabularyEntry struct {
	bun.BaseModel `bun:"table:vocabulary,alias:v"`

	Name   string `bun:"name,pk,type:varchar(128)"`
	Active bool   `bun:"active,notnull,default:true"`
}

// RosterSetting stores a submitter's active roster and optional display name.
type RosterSetting struct {
	bun.BaseModel `bun:"table:roster_settings,alias:rs"`

	SubmitterID    int64   `bun:"submitter_id,pk"`
	ActiveRosterID int64   `bun:"active_roster_id,notnull,default:1"`
	DisplayName    *string `bun:"display_name,type:varchar(128)"`
}
