package apperr

import (
	"net/http"

	"github.com/expertdev121/givesuite-sub003/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (k Kind) httpStatus() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) code() int {
	switch k {
	case Validation:
		return util.CodeInvalidParam
	case NotFound:
		return util.CodeNotFound
	case Conflict:
		return util.CodeConflict
	case Unavailable:
		return util.CodeUnavailable
	default:
		return util.CodeServerErr
	}
}

// Respond classifies err, logs it, and writes the error envelope.
// Internal detail is suppressed outside debug mode.
func Respond(c *gin.Context, err error) {
	ae := Classify(err)

	evt := log.Warn()
	if ae.Kind == Internal || ae.Kind == Unavailable {
		evt = log.Error()
	}
	evt.Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", ae.Kind.httpStatus()).
		Msg("request failed")

	msg := ae.Msg
	if ae.Kind == Internal && !gin.IsDebugging() {
		msg = "internal error"
	}
	util.Error(c, ae.Kind.httpStatus(), ae.Kind.code(), msg)
}
