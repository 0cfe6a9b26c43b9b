package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Batch is one generation round for a project. The unique index on
// (project_id, sequence) rejects duplicate sequence numbers under concurrent
// generation; the loser retries with a fresh sequence.
type Batch struct {
	gorm.Model
	ProjectID  uint                          `gorm:"uniqueIndex:idx_project_sequence;comment:project this round belongs to"`
	Sequence   int                           `gorm:"uniqueIndex:idx_project_sequence;comment:monotonic round number per project"`
	Status     BatchStatus                   `gorm:"type:varchar(32);index;comment:active or completed"`
	Quota      datatypes.JSONType[QuotaSpec] `gorm:"comment:quota used to generate this round"`
	Candidates []Candidate
}
