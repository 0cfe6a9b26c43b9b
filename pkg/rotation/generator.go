package rotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/pkg/notify"
)

// Generator orchestrates one generation round: progressive exclusion,
// per-(skill, level) selection, rebalancing, and the transactional persist
// of the batch and its candidate rows.
type Generator struct {
	db       *gorm.DB
	selector *Selector
	cursors  *CursorStore
	cache    *Cache
	notifier notify.Notifier
	params   Params
}

func NewGenerator(db *gorm.DB, selector *Selector, cursors *CursorStore, cache *Cache,
	notifier notify.Notifier, params Params) *Generator {
	return &Generator{
		db:       db,
		selector: selector,
		cursors:  cursors,
		cache:    cache,
		notifier: notifier,
		params:   params,
	}
}

type GenerateResult struct {
	Batch      *model.Batch
	Candidates []model.Candidate
	Quota      model.QuotaSpec
}

// Empty reports a round that found no candidates. Callers may retry later
// or fall back to manual assignment; it is not an error.
func (r *GenerateResult) Empty() bool {
	return len(r.Candidates) == 0
}

// Generate runs one round for the project. Transient datastore conflicts
// (e.g. a concurrent round claiming the same sequence number) are retried
// with backoff; structural errors are not.
func (g *Generator) Generate(ctx context.Context, projectID uint, override *model.QuotaSpec) (*GenerateResult, error) {
	var result *GenerateResult
	err := retryTransient(ctx, g.params.RetryAttempts, g.params.RetryBackoff, func() error {
		r, genErr := g.generateOnce(ctx, projectID, override)
		result = r
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *Generator) generateOnce(ctx context.Context, projectID uint, override *model.QuotaSpec) (*GenerateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.params.TxTimeout)
	defer cancel()

	quota := g.params.DefaultQuota
	if override != nil {
		quota = *override
	}

	var (
		result   *GenerateResult
		selected map[CursorKey][]uint
		cacheKey string
	)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Wrap(ErrProjectNotFound, err)
			}
			return fmt.Errorf("load project %d: %w", projectID, err)
		}
		if project.Status == model.ProjectInProgress || project.Status == model.ProjectCompleted {
			return Wrap(ErrInvalidProjectState, fmt.Errorf("status %s", project.Status))
		}

		exclude, nextSeq, err := g.progressiveExclusion(tx, projectID)
		if err != nil {
			return err
		}

		cacheKey = CacheKey(projectID, project.SkillIDs, quota)
		raw, hit := g.cache.Get(cacheKey)
		if !hit {
			raw, err = g.selectRaw(ctx, tx, &project, quota, exclude)
			if err != nil {
				return err
			}
			g.cache.Set(cacheKey, raw)
		}

		candidates := Rebalance(raw, quota)

		batch := model.Batch{
			ProjectID: projectID,
			Sequence:  nextSeq,
			Status:    model.BatchActive,
			Quota:     datatypes.NewJSONType(quota),
		}
		if len(candidates) == 0 {
			// Terminal for this round: an empty completed batch stops
			// callers from looping on generation.
			batch.Status = model.BatchCompleted
			if err = tx.Create(&batch).Error; err != nil {
				return classifyDBError(err)
			}
			result = &GenerateResult{Batch: &batch, Quota: quota}
			return nil
		}

		if err = tx.Create(&batch).Error; err != nil {
			return classifyDBError(err)
		}

		now := time.Now()
		deadline := now.Add(g.params.AcceptDeadline)
		rows := make([]model.Candidate, 0, len(candidates))
		selected = make(map[CursorKey][]uint)
		for _, d := range candidates {
			rows = append(rows, model.Candidate{
				BatchID:        batch.ID,
				ProjectID:      projectID,
				DeveloperID:    d.DeveloperID,
				Level:          d.Level,
				SkillIDs:       datatypes.NewJSONSlice(d.SkillIDs),
				EstimateSecs:   int64(d.Estimate.Seconds()),
				AssignedAt:     now,
				Deadline:       &deadline,
				ResponseStatus: model.ResponsePending,
				Source:         model.SourceAutoRotation,
			})
			for _, skillID := range d.SkillIDs {
				key := CursorKey{SkillID: skillID, Level: d.Level}
				selected[key] = append(selected[key], d.DeveloperID)
			}
		}
		if err = tx.Create(&rows).Error; err != nil {
			return classifyDBError(err)
		}

		if err = tx.Model(&model.Project{}).Where("id = ?", projectID).
			Update("current_batch_id", batch.ID).Error; err != nil {
			return classifyDBError(err)
		}
		// Idempotent with respect to projects already assigning or accepted.
		if err = tx.Model(&model.Project{}).
			Where("id = ? AND status = ?", projectID, model.ProjectSubmitted).
			Update("status", model.ProjectAssigning).Error; err != nil {
			return classifyDBError(err)
		}

		batch.Candidates = rows
		result = &GenerateResult{Batch: &batch, Candidates: rows, Quota: quota}
		return nil
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	if !result.Empty() {
		g.postCommit(result, selected, cacheKey)
	}
	return result, nil
}

// postCommit runs the best-effort side effects outside the transaction so
// they cannot extend the lock hold time or roll back the batch.
func (g *Generator) postCommit(result *GenerateResult, selected map[CursorKey][]uint, cacheKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := g.cursors.Commit(ctx, selected); err != nil {
		klog.Errorf("rotation: cursor update after batch %d failed: %v", result.Batch.ID, err)
	}
	g.cache.InvalidateProject(result.Batch.ProjectID)

	if g.notifier != nil {
		ev := notify.NewEvent(notify.EventBatchGenerated, result.Batch.ProjectID)
		ev.BatchID = result.Batch.ID
		if err := g.notifier.Dispatch(ctx, ev); err != nil {
			klog.Errorf("rotation: batch event dispatch failed: %v", err)
		}
	}
}

// progressiveExclusion returns the developers excluded from this round and
// the next batch sequence number. Young projects get no exclusion so the
// pool is not exhausted prematurely; established projects exclude the last
// one or two batches so the same developers do not surface forever.
//
// The sequence is derived inside the generating transaction; concurrent
// rounds computing the same value lose on the (project, sequence) unique
// index and retry.
func (g *Generator) progressiveExclusion(tx *gorm.DB, projectID uint) ([]uint, int, error) {
	var batches []model.Batch
	if err := tx.Where("project_id = ?", projectID).
		Order("sequence DESC").
		Find(&batches).Error; err != nil {
		return nil, 0, fmt.Errorf("load batch history for project %d: %w", projectID, err)
	}
	count := len(batches)
	nextSeq := 1
	if count > 0 {
		nextSeq = batches[0].Sequence + 1
	}

	var lookback int
	switch {
	case count >= g.params.ExcludeTwoAfterBatches:
		lookback = 2
	case count >= g.params.ExcludeAfterBatches:
		lookback = 1
	default:
		return nil, nextSeq, nil
	}
	if lookback > count {
		lookback = count
	}

	recentIDs := lo.Map(batches[:lookback], func(b model.Batch, _ int) uint { return b.ID })
	var excluded []uint
	res := tx.Model(&model.Candidate{}).
		Where("batch_id IN ?", recentIDs).
		Distinct().
		Pluck("developer_id", &excluded)
	if res.Error != nil {
		return nil, 0, fmt.Errorf("load excluded developers for project %d: %w", projectID, res.Error)
	}
	return excluded, nextSeq, nil
}

// selectRaw invokes the selector for every required skill and level inside
// the generating transaction.
func (g *Generator) selectRaw(ctx context.Context, tx *gorm.DB, project *model.Project,
	quota model.QuotaSpec, exclude []uint) ([]Descriptor, error) {
	selector := g.selector.withDB(tx)
	headroom := g.params.SelectorHeadroom
	if headroom < 1 {
		headroom = 1
	}

	var raw []Descriptor
	for _, skillID := range project.SkillIDs {
		for _, level := range model.AllLevels() {
			target := quota.ForLevel(level)
			if target == 0 {
				continue
			}
			selected, err := selector.Select(ctx, SelectInput{
				ProjectID:  project.ID,
				SkillID:    skillID,
				Level:      level,
				ExcludeIDs: exclude,
				Limit:      target * headroom,
			})
			if err != nil {
				return nil, err
			}
			raw = append(raw, selected...)
		}
	}
	return raw, nil
}
