package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leverage/internal/errs"
	"leverage/internal/model"
)

func TestParsePageQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query string
		want  pageQuery
	}{
		{"", pageQuery{}},
		{"?cursor=abc", pageQuery{Cursor: "abc"}},
		{"?limit=25", pageQuery{Limit: 25}},
		{"?limit=0", pageQuery{Limit: 1}},
		{"?limit=-3", pageQuery{Limit: 1}},
		{"?limit=lots", pageQuery{Limit: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/api/projects"+tt.query, nil)
			assert.Equal(t, tt.want, parsePageQuery(c))
		})
	}
}

func TestIDsRequest(t *testing.T) {
	_, err := idsRequest{}.nonEmpty()
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = idsRequest{IDs: []string{"", ""}}.nonEmpty()
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	ids, err := idsRequest{IDs: []string{"a", "", "b"}}.nonEmpty()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestSessionUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := sessionUser(c)
	assert.False(t, ok)

	c.Set(SessionUserKey, &model.User{ID: "u1"})
	user, ok := sessionUser(c)
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
}
