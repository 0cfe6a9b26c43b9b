package helper

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/devmatch-io/devmatch/dao"
	"github.com/devmatch-io/devmatch/dao/query"
	"github.com/devmatch-io/devmatch/internal/handler"
	"github.com/devmatch-io/devmatch/pkg/config"
	"github.com/devmatch-io/devmatch/pkg/cronjob"
	"github.com/devmatch-io/devmatch/pkg/notify"
	"github.com/devmatch-io/devmatch/pkg/rotation"
)

// ConfigInitializer wraps bootstrap: config, database, migrations and the
// component graph handed to the handlers.
type ConfigInitializer struct {
	backendConfig *config.Config
}

func NewConfigInitializer() *ConfigInitializer {
	return &ConfigInitializer{
		backendConfig: config.GetConfig(),
	}
}

func (ci *ConfigInitializer) GetBackendConfig() *config.Config {
	return ci.backendConfig
}

// LoadDebugEnvironment loads .debug.env in debug mode so a local run can
// override the listen address without touching the config file.
func (ci *ConfigInitializer) LoadDebugEnvironment() error {
	if gin.Mode() != gin.DebugMode {
		return nil
	}

	if err := godotenv.Load(".debug.env"); err != nil {
		return err
	}

	be := os.Getenv("DEVMATCH_BE_PORT")
	if be == "" {
		panic("DEVMATCH_BE_PORT is not set")
	}
	ci.backendConfig.ServerAddr = ":" + be

	return nil
}

// InitializeRegisterConfig builds the component graph: database, rotation
// core, notification sinks and the cron manager.
func (ci *ConfigInitializer) InitializeRegisterConfig() (*handler.RegisterConfig, error) {
	db := query.GetDB()

	if err := dao.Migrate(db); err != nil {
		return nil, err
	}

	// Notification sinks are optional; the hub always runs so the websocket
	// endpoint has a feed.
	hub := notify.NewHub()
	sinks := []notify.Notifier{hub}
	if url := ci.backendConfig.Notify.WebhookURL; url != "" {
		sinks = append(sinks, notify.NewWebhookNotifier(url))
	}
	if smtp := ci.backendConfig.Notify.SMTP; smtp.Host != "" {
		sinks = append(sinks, notify.NewSMTPNotifier(
			smtp.Host, smtp.Port, smtp.User, smtp.Password, smtp.From, smtp.Notify))
	}
	notifier := notify.NewManager(sinks...)

	params := rotation.ParamsFromConfig(&ci.backendConfig.Rotation)
	cursors := rotation.NewCursorStore(db)
	selector := rotation.NewSelector(db, cursors, params)
	cache := rotation.NewCache(time.Duration(ci.backendConfig.Rotation.CacheTTLSeconds) * time.Second)
	generator := rotation.NewGenerator(db, selector, cursors, cache, notifier, params)
	acceptance := rotation.NewAcceptance(db, notifier, params)
	sweeper := rotation.NewSweeper(db, notifier)

	return &handler.RegisterConfig{
		DB:         db,
		Generator:  generator,
		Acceptance: acceptance,
		Sweeper:    sweeper,
		CronMgr:    cronjob.NewCronJobManager(db, sweeper),
		Hub:        hub,
	}, nil
}
