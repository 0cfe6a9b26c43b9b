package model

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name  string  `gorm:"uniqueIndex;type:varchar(64);comment:unique login name"`
	Email *string `gorm:"type:varchar(128);comment:contact email"`
	Role  Role    `gorm:"comment:platform role (guest, user, admin)"`
}
