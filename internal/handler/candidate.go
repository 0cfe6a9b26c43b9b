package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/internal/resputil"
	"github.com/devmatch-io/devmatch/internal/util"
	"github.com/devmatch-io/devmatch/pkg/rotation"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewCandidateMgr)
}

type CandidateMgr struct {
	name       string
	db         *gorm.DB
	acceptance *rotation.Acceptance
}

func NewCandidateMgr(conf *RegisterConfig) Manager {
	return &CandidateMgr{
		name:       "candidates",
		db:         conf.DB,
		acceptance: conf.Acceptance,
	}
}

func (mgr *CandidateMgr) GetName() string { return mgr.name }

func (mgr *CandidateMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *CandidateMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.ListMine)
	g.POST(":id/accept", mgr.Accept)
	g.POST(":id/reject", mgr.Reject)
}

func (mgr *CandidateMgr) RegisterAdmin(_ *gin.RouterGroup) {}

func candidateID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid candidate id %q", c.Param("id"))
	}
	return uint(id), nil
}

// ListMine godoc
// @Summary List the acting developer's invites, newest first
// @Tags Candidate
// @Produce json
// @Security Bearer
// @Param status query string false "filter by response status"
// @Success 200 {object} resputil.Response[[]model.Candidate] "invites"
// @Router /candidates [get]
func (mgr *CandidateMgr) ListMine(c *gin.Context) {
	token := util.GetToken(c)
	if token.DeveloperID == 0 {
		resputil.HTTPError(c, http.StatusForbidden, "no developer profile", resputil.UserNotAllowed)
		return
	}

	tx := mgr.db.WithContext(c).Where("developer_id = ?", token.DeveloperID)
	if status := c.Query("status"); status != "" {
		tx = tx.Where("response_status = ?", model.ResponseStatus(status))
	}

	var candidates []model.Candidate
	if err := tx.Order("assigned_at DESC").Find(&candidates).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("list candidates failed, detail: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, candidates)
}

// Accept godoc
// @Summary Accept an invite
// @Description First acceptance on a project wins; losers receive 409 with a race code
// @Tags Candidate
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[rotation.AcceptResult] "claim result"
// @Failure 409 {object} resputil.Response[any] "lost the race or invite no longer pending"
// @Router /candidates/{id}/accept [post]
func (mgr *CandidateMgr) Accept(c *gin.Context) {
	id, err := candidateID(c)
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	result, err := mgr.acceptance.Accept(c.Request.Context(), id, token.UserID)
	if err != nil {
		replyRotationError(c, err)
		return
	}
	resputil.Success(c, *result)
}

// Reject godoc
// @Summary Decline an invite
// @Description Allowed even past the deadline; rejection only releases the seat
// @Tags Candidate
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[string] "rejected"
// @Router /candidates/{id}/reject [post]
func (mgr *CandidateMgr) Reject(c *gin.Context) {
	id, err := candidateID(c)
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	if err := mgr.acceptance.Reject(c.Request.Context(), id, token.UserID); err != nil {
		replyRotationError(c, err)
		return
	}
	resputil.Success(c, "rejected")
}
