package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devmatch-io/devmatch/pkg/cronjob"
	"github.com/devmatch-io/devmatch/pkg/notify"
	"github.com/devmatch-io/devmatch/pkg/rotation"
)

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// RegisterConfig carries the shared components handed to every manager
// constructor.
type RegisterConfig struct {
	DB         *gorm.DB
	Generator  *rotation.Generator
	Acceptance *rotation.Acceptance
	Sweeper    *rotation.Sweeper
	CronMgr    *cronjob.CronJobManager
	Hub        *notify.Hub
}

// Registers collects manager constructors via init() in each handler file.
var Registers []func(*RegisterConfig) Manager
