package operations

import (
	"github.com/gin-gonic/gin"

	"github.com/devmatch-io/devmatch/internal/handler"
	"github.com/devmatch-io/devmatch/pkg/cronjob"
	"github.com/devmatch-io/devmatch/pkg/rotation"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	handler.Registers = append(handler.Registers, NewOperationsMgr)
}

// OperationsMgr exposes the admin surface: cron schedule management and the
// manual expiration sweep.
type OperationsMgr struct {
	name           string
	cronJobManager *cronjob.CronJobManager
	sweeper        *rotation.Sweeper
}

func NewOperationsMgr(conf *handler.RegisterConfig) handler.Manager {
	return &OperationsMgr{
		name:           "operations",
		cronJobManager: conf.CronMgr,
		sweeper:        conf.Sweeper,
	}
}

func (mgr *OperationsMgr) GetName() string { return mgr.name }

func (mgr *OperationsMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *OperationsMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *OperationsMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("/cronjob", mgr.GetCronjobConfigs)
	g.PUT("/cronjob", mgr.UpdateCronjobConfig)
	g.GET("/cronjob/names", mgr.GetCronjobNames)
	g.GET("/cronjob/records", mgr.GetCronjobRecords)
	g.POST("/sweep", mgr.ManualSweep)
}
