package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/internal/domain/workflow"
)

// ErrorResponse is the structured error envelope every failure is
// served as. Code is stable; message and details.help are for humans.
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func newErrorResponse(code, message, help string) ErrorResponse {
	resp := ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	}
	if help != "" {
		resp.Details = map[string]interface{}{"help": help}
	}
	return resp
}

// writeError maps an application error onto the envelope and an HTTP
// status. Anything outside the recoverable taxonomy is a 500 with no
// internals leaked.
func writeError(c *gin.Context, err error) {
	var domainErr entity.DomainError
	if errors.As(err, &domainErr) {
		status := statusForCode(domainErr)
		resp := newErrorResponse(domainErr.ErrorCode(), domainErr.Error(), domainErr.Help())

		var validationErr *entity.ValidationError
		if errors.As(err, &validationErr) && len(validationErr.Fields) > 0 {
			resp.Details["fields"] = validationErr.Fields
		}
		var overlapErr *entity.OverlapError
		if errors.As(err, &overlapErr) {
			resp.Details["conflict_ids"] = overlapErr.ConflictIDs
		}

		c.JSON(status, resp)
		return
	}

	if errors.Is(err, workflow.ErrInvalidDecision) {
		c.JSON(http.StatusBadRequest, newErrorResponse(
			"INVALID_DECISION", err.Error(),
			"Provide a valid target status and the mandatory comment"))
		return
	}

	c.JSON(http.StatusInternalServerError, newErrorResponse(
		"INTERNAL_ERROR", "An internal error occurred", ""))
}

func statusForCode(err entity.DomainError) int {
	switch err.(type) {
	case *entity.ValidationError, *entity.ZeroAmountError:
		return http.StatusBadRequest
	case *entity.NotAuthorizedError:
		return http.StatusForbidden
	case *entity.NotFoundError:
		return http.StatusNotFound
	case *entity.OverlapError, *entity.InvalidTransitionError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeBadRequest reports malformed input that never reached the
// services (unparsable ids, dates, or numbers).
func writeBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, newErrorResponse(
		"INVALID_REQUEST", message, "Check the request format and try again"))
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(
		"UNAUTHENTICATED", "Authentication required",
		"Provide a valid bearer token in the Authorization header"))
}
