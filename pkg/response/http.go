package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"leverage/internal/errs"
)

const (
	CodeInvalidInput = "invalid_input"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeAnalysis     = "analysis_failed"
	CodeUpstream     = "upstream_unavailable"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func OkJson(c *gin.Context, v any) {
	c.JSON(http.StatusOK, Response[any]{Success: true, Data: v})
}

// Error writes the failure envelope; the status comes from errs.HTTPStatus.
func Error(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// 内部错误不向调用方暴露细节
		_ = c.Error(err)
		msg = http.StatusText(status)
	}
	c.JSON(status, Response[any]{Error: msg, Code: codeOf(err)})
}

// Fail writes the failure envelope with an explicit status.
func Fail(c *gin.Context, status int, code, msg string) {
	c.JSON(status, Response[any]{Error: msg, Code: code})
}

func codeOf(err error) string {
	var analysisErr *errs.AnalysisError
	switch {
	case errors.As(err, &analysisErr):
		return CodeAnalysis
	case errors.Is(err, errs.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, errs.ErrConflict):
		return CodeConflict
	case errors.Is(err, errs.ErrInvalidInput), errors.Is(err, errs.ErrInvalidReference):
		return CodeInvalidInput
	case errors.Is(err, errs.ErrUpstreamUnavailable):
		return CodeUpstream
	default:
		return CodeInternal
	}
}
