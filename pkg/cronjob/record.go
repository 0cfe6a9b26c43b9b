package cronjob

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
	"k8s.io/klog/v2"

	"github.com/devmatch-io/devmatch/dao/model"
)

const sweepTimeout = time.Minute

// wrapSweeperFunc wraps one sweeper run so that every execution leaves a
// record, successful or not.
func (cm *CronJobManager) wrapSweeperFunc(jobName string) cron.FuncJob {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		record := &model.CronJobRecord{
			Name:        jobName,
			ExecuteTime: time.Now(),
			Status:      model.CronJobRecordStatusSuccess,
		}

		expired, err := cm.sweeper.Sweep(ctx)
		if err != nil {
			record.Status = model.CronJobRecordStatusFailed
			record.Message = err.Error()
			klog.Errorf("cronjob %s: sweep failed: %v", jobName, err)
		} else {
			payload, _ := json.Marshal(map[string]int64{"expired": expired})
			record.JobData = datatypes.JSON(payload)
			if expired > 0 {
				klog.Infof("cronjob %s: expired %d candidates", jobName, expired)
			}
		}

		if err := cm.db.Create(record).Error; err != nil {
			klog.Errorf("cronjob %s: failed to write record: %v", jobName, err)
		}
	}
}

// GetCronjobNames retrieves all cron job names from database
func (cm *CronJobManager) GetCronjobNames(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	if err := cm.db.WithContext(ctx).Model(&model.CronJobConfig{}).Select("name").Find(&names).Error; err != nil {
		err := fmt.Errorf("CronJobManager.GetCronjobNames: %w", err)
		klog.Error(err)
		return nil, err
	}
	return names, nil
}

// GetCronjobRecords retrieves cronjob records with optional filtering
func (cm *CronJobManager) GetCronjobRecords(
	ctx context.Context,
	names []string,
	startTime *time.Time,
	endTime *time.Time,
	status *string,
) ([]*model.CronJobRecord, error) {
	tx := cm.db.WithContext(ctx)
	if len(names) > 0 {
		tx = tx.Where("name IN ?", names)
	}
	if startTime != nil {
		tx = tx.Where("execute_time >= ?", *startTime)
	}
	if endTime != nil {
		tx = tx.Where("execute_time <= ?", *endTime)
	}
	if status != nil {
		tx = tx.Where("status = ?", *status)
	}

	var records []*model.CronJobRecord
	if err := tx.Order("execute_time DESC").Find(&records).Error; err != nil {
		err := fmt.Errorf("CronJobManager.GetCronjobRecords: %w", err)
		klog.Error(err)
		return nil, err
	}
	return records, nil
}
