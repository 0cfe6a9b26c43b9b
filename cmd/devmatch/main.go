package main

import (
	"k8s.io/klog/v2"

	"github.com/devmatch-io/devmatch/cmd/devmatch/helper"
)

// @title						Devmatch API
// @version						1.0.0
// @description					This is the API server for devmatch, a fairness-preserving developer/project matching service.
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description					Call /v1/auth/login, then send 'Bearer ${TOKEN}' to access protected endpoints
func main() {
	// Initialize configuration
	configInit := helper.NewConfigInitializer()
	backendConfig := configInit.GetBackendConfig()

	// Load debug environment if needed
	if err := configInit.LoadDebugEnvironment(); err != nil {
		klog.Fatalf("Failed to load env: %s", err)
	}

	// Initialize register config and dependencies
	registerConfig, err := configInit.InitializeRegisterConfig()
	if err != nil {
		klog.Fatalf("Failed to register config: %s\n", err)
	}

	// Start the cron schedules stored in the database
	registerConfig.CronMgr.SyncCronJob()
	defer registerConfig.CronMgr.StopCron()

	// Start HTTP server
	serverRunner := helper.NewServerRunner(backendConfig)
	serverRunner.StartServer(registerConfig)
}
