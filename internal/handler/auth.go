package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/internal/resputil"
	"github.com/devmatch-io/devmatch/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

// AuthMgr exchanges an identity asserted by the fronting auth service for
// platform JWTs. Credential verification happens upstream; this handler only
// resolves the user and its developer profile.
type AuthMgr struct {
	name     string
	db       *gorm.DB
	tokenMgr *util.TokenManager
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	return &AuthMgr{
		name:     "auth",
		db:       conf.DB,
		tokenMgr: util.GetTokenMgr(),
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/login", mgr.Login)
	g.POST("/refresh", mgr.RefreshToken)
}

func (mgr *AuthMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	LoginReq struct {
		Username string `json:"username" binding:"required"`
	}

	LoginResp struct {
		AccessToken  string     `json:"accessToken"`
		RefreshToken string     `json:"refreshToken"`
		Role         model.Role `json:"role"`
		DeveloperID  uint       `json:"developerID"`
	}

	RefreshReq struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
)

// Login godoc
// @Summary Issue platform tokens for a known user
// @Description Resolves the user and an optional developer profile, then returns an access/refresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body LoginReq true "login request"
// @Success 200 {object} resputil.Response[LoginResp] "token pair"
// @Failure 401 {object} resputil.Response[any] "unknown user"
// @Router /auth/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var user model.User
	if err := mgr.db.WithContext(c).Where("name = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	msg := util.JWTMessage{
		UserID:   user.ID,
		Username: user.Name,
		Role:     user.Role,
	}

	// A user without a developer profile can still own projects.
	var dev model.Developer
	err := mgr.db.WithContext(c).Where("user_id = ?", user.ID).First(&dev).Error
	if err == nil {
		msg.DeveloperID = dev.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	mgr.reply(c, &msg)
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a fresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body RefreshReq true "refresh request"
// @Success 200 {object} resputil.Response[LoginResp] "token pair"
// @Failure 401 {object} resputil.Response[any] "invalid refresh token"
// @Router /auth/refresh [post]
func (mgr *AuthMgr) RefreshToken(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	msg, err := mgr.tokenMgr.CheckRefreshToken(req.RefreshToken)
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, err.Error(), resputil.TokenInvalid)
		return
	}

	mgr.reply(c, &msg)
}

func (mgr *AuthMgr) reply(c *gin.Context, msg *util.JWTMessage) {
	access, refresh, err := mgr.tokenMgr.CreateTokens(msg)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.ServiceError)
		return
	}
	resputil.Success(c, LoginResp{
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         msg.Role,
		DeveloperID:  msg.DeveloperID,
	})
}
