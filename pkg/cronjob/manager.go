// Package cronjob schedules the backend's periodic work from cron job
// configurations stored in the database. The only job type today is the
// rotation sweeper that expires timed-out candidate invites.
package cronjob

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/devmatch-io/devmatch/pkg/rotation"
)

type CronJobManager struct {
	db      *gorm.DB
	sweeper *rotation.Sweeper

	cron      *cron.Cron
	cronMutex sync.RWMutex
}

func NewCronJobManager(db *gorm.DB, sweeper *rotation.Sweeper) *CronJobManager {
	return &CronJobManager{
		db:      db,
		sweeper: sweeper,
		cron:    cron.New(cron.WithLocation(time.Local)),
	}
}
