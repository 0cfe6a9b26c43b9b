package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is a work request. At most one developer can ever claim it: the
// claim is guarded by (current_batch_id, contact_revealed) in a conditional
// update, so RevealedToID holds at most one non-null claimant.
type Project struct {
	gorm.Model
	OwnerID         uint                      `gorm:"index;comment:client who submitted the project"`
	Owner           User                      `gorm:"foreignKey:OwnerID"`
	Title           string                    `gorm:"type:varchar(128);comment:short title"`
	SkillIDs        datatypes.JSONSlice[uint] `gorm:"comment:required skills in priority order"`
	Status          ProjectStatus             `gorm:"type:varchar(32);index;comment:lifecycle status"`
	CurrentBatchID  *uint                     `gorm:"comment:batch currently collecting responses"`
	ContactRevealed bool                      `gorm:"type:boolean;default:false;comment:set once a developer claims the project"`
	RevealedToID    *uint                     `gorm:"comment:developer the contact was revealed to"`
}
