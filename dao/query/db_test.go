package query

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/devmatch-io/devmatch/dao/model"
)

// A duplicate (project_id, sequence) insert must surface as
// gorm.ErrDuplicatedKey, not as a raw driver error, or the generation
// retry path never classifies the conflict as retriable.
func TestGormConfigTranslatesUniqueViolations(t *testing.T) {
	conf := gormConfig()
	require.True(t, conf.TranslateError)

	conf.Logger = logger.Default.LogMode(logger.Silent)
	db, err := gorm.Open(sqlite.Open(":memory:"), conf)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Batch{}))

	require.NoError(t, db.Create(&model.Batch{ProjectID: 1, Sequence: 1, Status: model.BatchActive}).Error)
	err = db.Create(&model.Batch{ProjectID: 1, Sequence: 1, Status: model.BatchActive}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
