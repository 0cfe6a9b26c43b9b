package query

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
	"k8s.io/klog/v2"

	"github.com/devmatch-io/devmatch/pkg/config"
)

var (
	once     sync.Once
	instance *gorm.DB
)

// gormConfig is shared by the primary connection. TranslateError must stay
// on: the batch sequence retry path matches on gorm.ErrDuplicatedKey, which
// the driver only surfaces with translation enabled.
func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// GetDB returns the singleton instance of the database connection.
func GetDB() *gorm.DB {
	once.Do(func() {
		dbConfig := config.GetConfig()

		host := dbConfig.Postgres.Host
		port := dbConfig.Postgres.Port
		dbName := dbConfig.Postgres.DBName
		user := dbConfig.Postgres.User
		password := dbConfig.Postgres.Password
		sslMode := dbConfig.Postgres.SSLMode
		timeZone := dbConfig.Postgres.TimeZone

		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbName, port, sslMode, timeZone)
		var err error
		instance, err = gorm.Open(postgres.Open(dsn), gormConfig())
		if err != nil {
			panic(err)
		}

		// Pool scans read the eligibility projection heavily; route reads to
		// the replica when one is configured.
		if replica := dbConfig.Postgres.ReplicaHost; replica != "" {
			replicaDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
				replica, user, password, dbName, port, sslMode, timeZone)
			if err = instance.Use(dbresolver.Register(dbresolver.Config{
				Replicas: []gorm.Dialector{postgres.Open(replicaDSN)},
			})); err != nil {
				panic(err)
			}
		}

		maxIdleConns := 5
		maxOpenConns := 10
		sqlDB, err := instance.DB()
		if err != nil {
			panic(err)
		}
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Hour)

		klog.Info("Postgres init success!")
	})
	return instance
}
