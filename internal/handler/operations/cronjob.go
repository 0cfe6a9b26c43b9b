package operations

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/internal/resputil"
)

type CronjobConfigs struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Schedule string         `json:"schedule"`
	Suspend  bool           `json:"suspend"`
	Configs  map[string]any `json:"configs"`
}

// UpdateCronjobConfig godoc
//
//	@Summary		Update cronjob config
//	@Description	Update one cronjob config
//	@Tags			Operations
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			use	body		CronjobConfigs			true	"CronjobConfigs"
//	@Success		200	{object}	resputil.Response[any]	"Success"
//	@Failure		400	{object}	resputil.Response[any]	"Request parameter error"
//	@Failure		500	{object}	resputil.Response[any]	"Other errors"
//	@Router			/v1/admin/operations/cronjob [put]
func (mgr *OperationsMgr) UpdateCronjobConfig(c *gin.Context) {
	var req CronjobConfigs
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	var (
		jobTypePtr *model.CronJobType
		specPtr    *string
		configPtr  *string
	)
	if req.Type != "" {
		jobTypePtr = ptr.To(model.CronJobType(req.Type))
	}
	if req.Schedule != "" {
		specPtr = ptr.To(req.Schedule)
	}
	if len(req.Configs) > 0 {
		configJSON, err := json.Marshal(req.Configs)
		if err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		configPtr = ptr.To(string(configJSON))
	}

	if err := mgr.cronJobManager.UpdateJobConfig(req.Name, jobTypePtr, specPtr, &req.Suspend, configPtr); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, "Successfully update cronjob config")
}

// GetCronjobConfigs godoc
//
//	@Summary		Get all cronjob configs
//	@Description	Get all cronjob configs
//	@Tags			Operations
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[any]	"Success"
//	@Failure		400	{object}	resputil.Response[any]	"Request parameter error"
//	@Failure		500	{object}	resputil.Response[any]	"Other errors"
//	@Router			/v1/admin/operations/cronjob [get]
func (mgr *OperationsMgr) GetCronjobConfigs(c *gin.Context) {
	jobs, err := mgr.cronJobManager.GetAllCronJobs(c)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	configs := lo.Map(jobs, func(job *model.CronJobConfig, _ int) CronjobConfigs {
		config := make(map[string]any)
		if err := json.Unmarshal(job.Config, &config); err != nil {
			config = map[string]any{}
		}
		return CronjobConfigs{
			Name:     job.Name,
			Type:     string(job.Type),
			Schedule: job.Spec,
			Suspend:  job.GetSuspend(),
			Configs:  config,
		}
	})
	resputil.Success(c, configs)
}

func (mgr *OperationsMgr) GetCronjobNames(c *gin.Context) {
	names, err := mgr.cronJobManager.GetCronjobNames(c)
	if err != nil {
		klog.Error(err)
		resputil.Error(c, err.Error(), resputil.ServiceError)
		return
	}
	resputil.Success(c, names)
}

type GetCronjobRecordsReq struct {
	Names     []string `form:"names"`
	StartTime string   `form:"startTime"`
	EndTime   string   `form:"endTime"`
	Status    string   `form:"status"`
}

// GetCronjobRecords godoc
//
//	@Summary		List cronjob run records
//	@Description	Optionally filtered by name, execution time range and status
//	@Tags			Operations
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[any]	"Success"
//	@Router			/v1/admin/operations/cronjob/records [get]
func (mgr *OperationsMgr) GetCronjobRecords(c *gin.Context) {
	var req GetCronjobRecordsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var startTime, endTime *time.Time
	if req.StartTime != "" {
		t, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			resputil.BadRequestError(c, err.Error())
			return
		}
		startTime = &t
	}
	if req.EndTime != "" {
		t, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			resputil.BadRequestError(c, err.Error())
			return
		}
		endTime = &t
	}
	var status *string
	if req.Status != "" {
		status = &req.Status
	}

	records, err := mgr.cronJobManager.GetCronjobRecords(c, req.Names, startTime, endTime, status)
	if err != nil {
		klog.Error(err)
		resputil.Error(c, err.Error(), resputil.ServiceError)
		return
	}
	resputil.Success(c, records)
}

// ManualSweep godoc
//
//	@Summary		Expire overdue invites now
//	@Description	Runs one sweep outside the cron schedule
//	@Tags			Operations
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[any]	"expired count"
//	@Router			/v1/admin/operations/sweep [post]
func (mgr *OperationsMgr) ManualSweep(c *gin.Context) {
	expired, err := mgr.sweeper.Sweep(c.Request.Context())
	if err != nil {
		klog.Error(err)
		resputil.Error(c, err.Error(), resputil.ServiceError)
		return
	}
	resputil.Success(c, gin.H{"expired": expired})
}
