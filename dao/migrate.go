// Package dao owns the schema migrations for the rotation backend.
package dao

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"

	"github.com/devmatch-io/devmatch/dao/model"
)

// Migrate applies all pending migrations.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202601050001_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.User{},
					&model.Developer{},
					&model.DeveloperSkill{},
					&model.Project{},
					&model.Batch{},
					&model.Candidate{},
					&model.RotationCursor{},
					&model.ContactDisclosure{},
					&model.CronJobConfig{},
					&model.CronJobRecord{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"cron_job_records",
					"cron_job_configs",
					"contact_disclosures",
					"rotation_cursors",
					"candidates",
					"batches",
					"projects",
					"developer_skills",
					"developers",
					"users",
				)
			},
		},
		{
			ID: "202601050002_seed_sweeper_cronjob",
			Migrate: func(tx *gorm.DB) error {
				sweeper := &model.CronJobConfig{
					Name:    "rotation-sweeper",
					Type:    model.CronJobTypeRotationSweeper,
					Spec:    "@every 1m",
					Suspend: ptr.To(false),
					EntryID: -1,
				}
				return tx.Where(model.CronJobConfig{Name: sweeper.Name}).
					FirstOrCreate(sweeper).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Where("name = ?", "rotation-sweeper").
					Delete(&model.CronJobConfig{}).Error
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return err
	}
	klog.Info("database migration finished")
	return nil
}
