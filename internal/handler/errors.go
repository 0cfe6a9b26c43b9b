package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devmatch-io/devmatch/internal/resputil"
	"github.com/devmatch-io/devmatch/pkg/rotation"
)

var raceCodes = map[string]resputil.ErrorCode{
	rotation.ErrAlreadyClaimed.Code: resputil.AlreadyClaimed,
	rotation.ErrRaceLost.Code:       resputil.RaceLost,
	rotation.ErrNotPending.Code:     resputil.NotPending,
	rotation.ErrBatchNotActive.Code: resputil.BatchNotActive,
	rotation.ErrDeadlinePassed.Code: resputil.DeadlinePassed,
}

// replyRotationError maps the rotation error taxonomy onto HTTP statuses:
// races are 409, structural errors 4xx by kind, exhausted retries 503.
func replyRotationError(c *gin.Context, err error) {
	var e *rotation.Error
	if !errors.As(err, &e) {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	switch e.Category {
	case rotation.CategoryRace:
		code, ok := raceCodes[e.Code]
		if !ok {
			code = resputil.RaceLost
		}
		resputil.HTTPError(c, http.StatusConflict, e.Message, code)
	case rotation.CategoryTransient:
		resputil.HTTPError(c, http.StatusServiceUnavailable, e.Message, resputil.TransientFailure)
	case rotation.CategoryStructural:
		switch {
		case errors.Is(err, rotation.ErrProjectNotFound), errors.Is(err, rotation.ErrCandidateNotFound):
			resputil.HTTPError(c, http.StatusNotFound, e.Message, resputil.NotFound)
		case errors.Is(err, rotation.ErrForbidden), errors.Is(err, rotation.ErrSelfAcceptForbidden):
			resputil.HTTPError(c, http.StatusForbidden, e.Message, resputil.UserNotAllowed)
		default:
			resputil.HTTPError(c, http.StatusBadRequest, e.Message, resputil.InvalidRequest)
		}
	default:
		resputil.Error(c, err.Error(), resputil.NotSpecified)
	}
}
