package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Candidate is one (batch, developer) pairing with its own response
// lifecycle. ProjectID is denormalized from the batch so the guarded accept
// and sweep updates can filter without a join.
//
// Within a project at most one row ever holds first_accepted = true; the
// claim update on the project row is the guard that enforces it.
type Candidate struct {
	gorm.Model
	BatchID        uint                      `gorm:"uniqueIndex:idx_batch_developer;comment:generation round"`
	Batch          Batch                     `gorm:"foreignKey:BatchID"`
	ProjectID      uint                      `gorm:"index;comment:project, denormalized for guarded updates"`
	DeveloperID    uint                      `gorm:"uniqueIndex:idx_batch_developer;index;comment:nominated developer"`
	Developer      Developer                 `gorm:"foreignKey:DeveloperID"`
	Level          Level                     `gorm:"comment:tier snapshot at assignment time"`
	SkillIDs       datatypes.JSONSlice[uint] `gorm:"comment:matched skills, union across required skills"`
	EstimateSecs   int64                     `gorm:"comment:response time estimate in seconds at assignment time"`
	AssignedAt     time.Time                 `gorm:"not null;comment:when the invite was created"`
	Deadline       *time.Time                `gorm:"index;comment:acceptance deadline, null for manual invites"`
	RespondedAt    *time.Time                `gorm:"comment:when the candidate left pending"`
	ResponseStatus ResponseStatus            `gorm:"type:varchar(32);index;comment:pending, accepted, rejected, expired, invalidated"`
	FirstAccepted  bool                      `gorm:"type:boolean;default:false;comment:true for the single winning acceptance"`
	Source         CandidateSource           `gorm:"type:varchar(32);index;comment:auto_rotation or manual_invite"`
}
