package model

import "gorm.io/gorm"

// ContactDisclosure records that a client's contact details were shared with
// a developer for a project. Created with ON CONFLICT DO NOTHING so repeated
// accepts stay idempotent.
type ContactDisclosure struct {
	gorm.Model
	ProjectID   uint `gorm:"uniqueIndex:idx_disclosure;comment:project"`
	ClientID    uint `gorm:"uniqueIndex:idx_disclosure;comment:project owner"`
	DeveloperID uint `gorm:"uniqueIndex:idx_disclosure;comment:developer the contact was revealed to"`
}
