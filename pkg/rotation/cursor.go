package rotation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devmatch-io/devmatch/dao/model"
)

// CursorKey identifies one rotation cursor.
type CursorKey struct {
	SkillID uint
	Level   model.Level
}

// CursorStore persists the per-(skill, level) memory of recently selected
// developers. Commit runs after the generating transaction, so a crash
// between batch commit and cursor update costs one round of fairness, not
// a batch.
type CursorStore struct {
	db *gorm.DB
}

func NewCursorStore(db *gorm.DB) *CursorStore {
	return &CursorStore{db: db}
}

func (cs *CursorStore) withDB(db *gorm.DB) *CursorStore {
	return &CursorStore{db: db}
}

// LastUsed returns the developer set selected in the previous round for the
// pair, empty when no cursor exists yet.
func (cs *CursorStore) LastUsed(ctx context.Context, key CursorKey) (map[uint]struct{}, error) {
	var cursor model.RotationCursor
	err := cs.db.WithContext(ctx).
		Where("skill_id = ? AND level = ?", key.SkillID, key.Level).
		First(&cursor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[uint]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rotation cursor (%d, %s): %w", key.SkillID, key.Level, err)
	}
	used := make(map[uint]struct{}, len(cursor.LastUsedIDs))
	for _, id := range cursor.LastUsedIDs {
		used[id] = struct{}{}
	}
	return used, nil
}

// Commit upserts the cursors for every pair that selected developers this
// round.
func (cs *CursorStore) Commit(ctx context.Context, selected map[CursorKey][]uint) error {
	for key, ids := range selected {
		if len(ids) == 0 {
			continue
		}
		cursor := model.RotationCursor{
			SkillID:     key.SkillID,
			Level:       key.Level,
			LastUsedIDs: datatypes.NewJSONSlice(ids),
		}
		err := cs.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "skill_id"}, {Name: "level"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_used_ids", "updated_at"}),
		}).Create(&cursor).Error
		if err != nil {
			return fmt.Errorf("commit rotation cursor (%d, %s): %w", key.SkillID, key.Level, err)
		}
	}
	return nil
}
