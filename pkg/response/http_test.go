package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leverage/internal/errs"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"未找到", errs.NewRecordNotFoundErr("project", "p1"), http.StatusNotFound, CodeNotFound, "not found: project not found: p1"},
		{"冲突", fmt.Errorf("lease: %w", errs.ErrConflict), http.StatusConflict, CodeConflict, "lease: conflict"},
		{"分析失败", &errs.AnalysisError{ProjectID: "p1", Err: errs.ErrInvalidReference}, http.StatusBadRequest, CodeAnalysis, "analysis of p1 failed: invalid repository reference"},
		{"内部错误", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternal, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Error(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantMsg, body["error"])
			assert.NotContains(t, body, "data")
		})
	}
}

func TestOkJson(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	OkJson(c, map[string]int{"n": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, w.Body.String())
}
