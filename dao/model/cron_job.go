package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CronJobRecordStatus string

const (
	CronJobRecordStatusUnknown CronJobRecordStatus = "unknown"
	CronJobRecordStatusSuccess CronJobRecordStatus = "success"
	CronJobRecordStatusFailed  CronJobRecordStatus = "failed"
)

type CronJobRecord struct {
	gorm.Model
	Name        string              `gorm:"type:varchar(128);not null;index;comment:cronjob name" json:"name"`
	ExecuteTime time.Time           `gorm:"not null;index;comment:execution time" json:"executeTime"`
	Status      CronJobRecordStatus `gorm:"type:varchar(128);not null;index;default:unknown;comment:execution status" json:"status"`
	Message     string              `gorm:"type:text;comment:execution message or error" json:"message"`
	JobData     datatypes.JSON      `gorm:"comment:run payload (e.g. expired candidate count)" json:"jobData"`
}

func (CronJobRecord) TableName() string {
	return "cron_job_records"
}

type CronJobType string

func (c CronJobType) String() string {
	return string(c)
}

const (
	CronJobTypeRotationSweeper CronJobType = "rotation_sweeper"
)

func GetAllCronJobTypes() []CronJobType {
	return []CronJobType{
		CronJobTypeRotationSweeper,
	}
}

type CronJobConfig struct {
	gorm.Model
	Name    string         `gorm:"type:varchar(128);not null;index;unique;comment:cronjob config name" json:"name"`
	Type    CronJobType    `gorm:"type:varchar(128);not null;index;comment:cronjob type" json:"type"`
	Spec    string         `gorm:"type:varchar(128);not null;index;comment:cron schedule spec" json:"spec"`
	Suspend *bool          `gorm:"not null;default:false;comment:whether execution is suspended" json:"suspend"`
	Config  datatypes.JSON `gorm:"comment:cronjob config data" json:"config"`
	EntryID int            `gorm:"type:int;comment:cron entry id" json:"entry_id"`
}

func (c *CronJobConfig) GetSuspend() bool {
	var v bool
	if c.Suspend != nil {
		v = *c.Suspend
	}
	return v
}

func (CronJobConfig) TableName() string {
	return "cron_job_configs"
}
