package rotation

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/devmatch-io/devmatch/dao/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection of a :memory: DSN sees its own database, so the
	// pool is pinned to a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Developer{},
		&model.DeveloperSkill{},
		&model.Project{},
		&model.Batch{},
		&model.Candidate{},
		&model.RotationCursor{},
		&model.ContactDisclosure{},
	))
	return db
}

func testParams() Params {
	p := DefaultParams()
	p.RetryBackoff = time.Millisecond
	return p
}

type devOption func(*model.Developer)

func unverified() devOption {
	return func(d *model.Developer) { d.ContactVerified = false }
}

func withAvailability(a model.Availability) devOption {
	return func(d *model.Developer) { d.Availability = a }
}

func withApproval(s model.ApprovalStatus) devOption {
	return func(d *model.Developer) { d.ApprovalStatus = s }
}

func seedDeveloper(t *testing.T, db *gorm.DB, name string, level model.Level, skillIDs []uint, opts ...devOption) model.Developer {
	t.Helper()
	user := model.User{Name: name, Role: model.RoleUser}
	require.NoError(t, db.Create(&user).Error)

	dev := model.Developer{
		UserID:          user.ID,
		ApprovalStatus:  model.ApprovalApproved,
		Availability:    model.AvailabilityAvailable,
		Level:           level,
		ContactVerified: true,
	}
	for _, opt := range opts {
		opt(&dev)
	}
	require.NoError(t, db.Create(&dev).Error)
	for _, skillID := range skillIDs {
		require.NoError(t, db.Create(&model.DeveloperSkill{DeveloperID: dev.ID, SkillID: skillID}).Error)
	}
	return dev
}

func seedProject(t *testing.T, db *gorm.DB, ownerName string, skillIDs []uint) model.Project {
	t.Helper()
	owner := model.User{Name: ownerName, Role: model.RoleUser}
	require.NoError(t, db.Create(&owner).Error)

	project := model.Project{
		OwnerID:  owner.ID,
		Title:    fmt.Sprintf("%s's project", ownerName),
		SkillIDs: datatypes.NewJSONSlice(skillIDs),
		Status:   model.ProjectSubmitted,
	}
	require.NoError(t, db.Create(&project).Error)
	return project
}

// claimScenario is a project with an active batch and pending invites,
// ready for accept/reject/sweep tests.
type claimScenario struct {
	project    model.Project
	batch      model.Batch
	candidates []model.Candidate
	developers []model.Developer
}

func seedClaimScenario(t *testing.T, db *gorm.DB, invites int, deadline time.Time) claimScenario {
	t.Helper()
	project := seedProject(t, db, "client", []uint{1})

	batch := model.Batch{
		ProjectID: project.ID,
		Sequence:  1,
		Status:    model.BatchActive,
		Quota:     datatypes.NewJSONType(model.QuotaSpec{Mid: invites}),
	}
	require.NoError(t, db.Create(&batch).Error)

	scenario := claimScenario{project: project, batch: batch}
	now := time.Now()
	for i := 0; i < invites; i++ {
		dev := seedDeveloper(t, db, fmt.Sprintf("dev-%d", i), model.LevelMid, []uint{1})
		cand := model.Candidate{
			BatchID:        batch.ID,
			ProjectID:      project.ID,
			DeveloperID:    dev.ID,
			Level:          dev.Level,
			SkillIDs:       datatypes.NewJSONSlice([]uint{1}),
			AssignedAt:     now,
			Deadline:       &deadline,
			ResponseStatus: model.ResponsePending,
			Source:         model.SourceAutoRotation,
		}
		require.NoError(t, db.Create(&cand).Error)
		scenario.developers = append(scenario.developers, dev)
		scenario.candidates = append(scenario.candidates, cand)
	}

	require.NoError(t, db.Model(&model.Project{}).Where("id = ?", project.ID).
		Updates(map[string]any{
			"status":           model.ProjectAssigning,
			"current_batch_id": batch.ID,
		}).Error)
	require.NoError(t, db.First(&scenario.project, project.ID).Error)
	return scenario
}
