package model

import "gorm.io/gorm"

// Developer is the eligibility projection read by the rotation core.
// Approval, availability, skills and level are owned by the onboarding and
// profile flows; the rotation core never mutates this table.
type Developer struct {
	gorm.Model
	UserID          uint           `gorm:"uniqueIndex;comment:identity of the developer"`
	User            User           `gorm:"foreignKey:UserID"`
	ApprovalStatus  ApprovalStatus `gorm:"type:varchar(32);index;comment:onboarding approval status"`
	Availability    Availability   `gorm:"type:varchar(32);index;comment:self-reported availability"`
	Level           Level          `gorm:"index;comment:experience tier (fresher, mid, expert)"`
	ContactVerified bool           `gorm:"type:boolean;default:false;comment:contact channel verified"`
	Skills          []DeveloperSkill
}

type DeveloperSkill struct {
	gorm.Model
	DeveloperID uint `gorm:"uniqueIndex:idx_developer_skill;comment:developer"`
	SkillID     uint `gorm:"uniqueIndex:idx_developer_skill;index;comment:skill"`
}
