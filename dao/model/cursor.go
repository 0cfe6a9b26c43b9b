package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RotationCursor remembers the developers selected last round for a
// (skill, level) pair so the selector can rank them after everyone else
// next time. Upserted after the batch commits, never deleted.
type RotationCursor struct {
	gorm.Model
	SkillID     uint                      `gorm:"uniqueIndex:idx_skill_level;comment:skill"`
	Level       Level                     `gorm:"uniqueIndex:idx_skill_level;comment:experience tier"`
	LastUsedIDs datatypes.JSONSlice[uint] `gorm:"comment:developer ids selected in the previous round"`
}
