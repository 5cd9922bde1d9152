// internal/handler/common.go - 处理器公共工具
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"leverage/internal/errs"
	"leverage/internal/model"
)

const (
	// SessionHeader carries the demo session id, which is a user id.
	SessionHeader = "X-Session-Id"
	// SessionUserKey is the gin context key of the resolved session user.
	SessionUserKey = "sessionUser"
)

// pageQuery 分页参数
type pageQuery struct {
	Cursor string
	Limit  int
}

// parsePageQuery reads ?cursor&limit. A present but unusable limit is
// clamped to 1; an absent one selects the store default.
func parsePageQuery(c *gin.Context) pageQuery {
	q := pageQuery{Cursor: c.Query("cursor")}
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			n = 1
		}
		q.Limit = n
	}
	return q
}

// bindJSON decodes the body into req, reporting malformed bodies as invalid input.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errs.NewInvalidParamErr("body", err)
	}
	return nil
}

// sessionUser returns the user resolved by the session middleware, if any.
func sessionUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(SessionUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

// idsRequest 批量删除请求
type idsRequest struct {
	IDs []string `json:"ids"`
}

// nonEmpty drops empty ids; an empty result is rejected.
func (r idsRequest) nonEmpty() ([]string, error) {
	out := make([]string, 0, len(r.IDs))
	for _, id := range r.IDs {
		if id != "" {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil, errs.NewMissingParamError("ids")
	}
	return out, nil
}
