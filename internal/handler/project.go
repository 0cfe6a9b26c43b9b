package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/internal/resputil"
	"github.com/devmatch-io/devmatch/internal/util"
	"github.com/devmatch-io/devmatch/pkg/rotation"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name      string
	db        *gorm.DB
	generator *rotation.Generator
}

func NewProjectMgr(conf *RegisterConfig) Manager {
	return &ProjectMgr{
		name:      "projects",
		db:        conf.DB,
		generator: conf.Generator,
	}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("", mgr.Create)
	g.GET(":id", mgr.Get)
	g.POST(":id/batches", mgr.GenerateBatch)
	g.GET(":id/batches", mgr.ListBatches)
	g.GET(":id/batches/current", mgr.CurrentBatch)
	g.POST(":id/cancel", mgr.Cancel)
}

func (mgr *ProjectMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	CreateProjectReq struct {
		Title    string `json:"title" binding:"required"`
		SkillIDs []uint `json:"skillIDs" binding:"required,min=1"`
	}

	QuotaReq struct {
		Fresher int `json:"fresher" binding:"min=0"`
		Mid     int `json:"mid" binding:"min=0"`
		Expert  int `json:"expert" binding:"min=0"`
	}

	GenerateBatchReq struct {
		Quota *QuotaReq `json:"quota"`
	}

	BatchResp struct {
		ID         uint              `json:"id"`
		Sequence   int               `json:"sequence"`
		Status     model.BatchStatus `json:"status"`
		Quota      model.QuotaSpec   `json:"quota"`
		Candidates []model.Candidate `json:"candidates,omitempty"`
	}
)

func projectID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid project id %q", c.Param("id"))
	}
	return uint(id), nil
}

// loadOwned fetches the project and checks the acting user may manage it.
func (mgr *ProjectMgr) loadOwned(c *gin.Context, id uint) (*model.Project, bool) {
	var project model.Project
	if err := mgr.db.WithContext(c).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.HTTPError(c, http.StatusNotFound, "project not found", resputil.NotFound)
		} else {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
		}
		return nil, false
	}
	token := util.GetToken(c)
	if project.OwnerID != token.UserID && token.Role != model.RoleAdmin {
		resputil.HTTPError(c, http.StatusForbidden, "not the project owner", resputil.UserNotAllowed)
		return nil, false
	}
	return &project, true
}

// Create godoc
// @Summary Submit a new project
// @Tags Project
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body CreateProjectReq true "project"
// @Success 200 {object} resputil.Response[model.Project] "created project"
// @Router /projects [post]
func (mgr *ProjectMgr) Create(c *gin.Context) {
	var req CreateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	project := model.Project{
		OwnerID:  token.UserID,
		Title:    req.Title,
		SkillIDs: datatypes.NewJSONSlice(req.SkillIDs),
		Status:   model.ProjectSubmitted,
	}
	if err := mgr.db.WithContext(c).Create(&project).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("create project failed, detail: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, project)
}

// Get godoc
// @Summary Get one project
// @Tags Project
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Project] "project"
// @Router /projects/{id} [get]
func (mgr *ProjectMgr) Get(c *gin.Context) {
	id, err := projectID(c)
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	project, ok := mgr.loadOwned(c, id)
	if !ok {
		return
	}
	resputil.Success(c, *project)
}

// GenerateBatch godoc
// @Summary Generate the next candidate batch for a project
// @Description Runs one rotation round; an empty round completes immediately and leaves the project open
// @Tags Project
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body GenerateBatchReq false "optional quota override"
// @Success 200 {object} resputil.Response[BatchResp] "generated batch"
// @Failure 409 {object} resputil.Response[any] "concurrent generation conflict"
// @Router /projects/{id}/batches [post]
func (mgr *ProjectMgr) GenerateBatch(c *gin.Context) {
	id, err := projectID(c)
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if _, ok := mgr.loadOwned(c, id); !ok {
		return
	}

	// The override body is optional.
	var req GenerateBatchReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			resputil.BadRequestError(c, err.Error())
			return
		}
	}
	var override *model.QuotaSpec
	if req.Quota != nil {
		override = &model.QuotaSpec{
			Fresher: req.Quota.Fresher,
			Mid:     req.Quota.Mid,
			Expert:  req.Quota.Expert,
		}
		if override.Total() == 0 {
			resputil.BadRequestError(c, "quota override must request at least one candidate")
			return
		}
	}

	result, err := mgr.generator.Generate(c.Request.Context(), id, override)
	if err != nil {
		replyRotationError(c, err)
		return
	}
	resputil.Success(c, BatchResp{
		ID:         result.Batch.ID,
		Sequence:   result.Batch.Sequence,
		Status:     result.Batch.Status,
		Quota:      result.Quota,
		Candidates: result.Candidates,
	})
}

// ListBatches godoc
// @Summary List a project's generation rounds, newest first
// @Tags Project
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]model.Batch] "batches"
// @Router /projects/{id}/batches [get]
func (mgr *ProjectMgr) ListBatches(c *gin.Context) {
	id, err := projectID(c)
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if _, ok := mgr.loadOwned(c, id); !ok {
		return
	}

	var batches []model.Batch
	if err := mgr.db.WithContext(c).
		Where("project_id = ?", id).
		Order("sequence DESC").
		Find(&batches).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("list batches failed, detail: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, batches)
}

// CurrentBatch godoc
// @Summary Get the batch currently collecting responses, with candidates
// @Tags Project
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[model.Batch] "current batch"
// @Failure 404 {object} resputil.Response[any] "no current batch"
// @Router /projects/{id}/batches/current [get]
func (mgr *ProjectMgr) CurrentBatch(c *gin.Context) {
	id, err := projectID(c)
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	project, ok := mgr.loadOwned(c, id)
	if !ok {
		return
	}
	if project.CurrentBatchID == nil {
		resputil.HTTPError(c, http.StatusNotFound, "project has no current batch", resputil.NotFound)
		return
	}

	var batch model.Batch
	if err := mgr.db.WithContext(c).
		Preload("Candidates").
		First(&batch, *project.CurrentBatchID).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("load batch failed, detail: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, batch)
}

// Cancel godoc
// @Summary Cancel a project that has not been claimed yet
// @Description Invalidates all pending invites of the current batch
// @Tags Project
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[string] "canceled"
// @Failure 409 {object} resputil.Response[any] "project already claimed or finished"
// @Router /projects/{id}/cancel [post]
func (mgr *ProjectMgr) Cancel(c *gin.Context) {
	id, err := projectID(c)
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	project, ok := mgr.loadOwned(c, id)
	if !ok {
		return
	}

	err = mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Project{}).
			Where("id = ? AND status IN ?", id,
				[]model.ProjectStatus{model.ProjectSubmitted, model.ProjectAssigning}).
			Update("status", model.ProjectCanceled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return rotation.Wrap(rotation.ErrInvalidProjectState,
				fmt.Errorf("project %d cannot be canceled", id))
		}

		if project.CurrentBatchID != nil {
			if err := tx.Model(&model.Candidate{}).
				Where("batch_id = ? AND response_status = ?",
					*project.CurrentBatchID, model.ResponsePending).
				Updates(map[string]any{"response_status": model.ResponseInvalidated}).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Batch{}).
				Where("id = ?", *project.CurrentBatchID).
				Update("status", model.BatchCompleted).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		replyRotationError(c, err)
		return
	}
	resputil.Success(c, "canceled")
}
