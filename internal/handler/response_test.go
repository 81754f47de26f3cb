package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"equb_server/internal/dto/request"
	"equb_server/pkg/errorx"
)

func TestHandleErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		want int
	}{
		{errorx.New(errorx.CodeForbidden, "x"), http.StatusForbidden},
		{errorx.New(errorx.CodeNotFound, "x"), http.StatusNotFound},
		{errorx.New(errorx.CodeConflict, "x"), http.StatusConflict},
		{errorx.New(errorx.CodePrecondition, "x"), http.StatusPreconditionFailed},
		{errorx.New(errorx.CodePayoutFailed, "x"), http.StatusBadGateway},
		{errorx.Wrap(errors.New("db down"), errorx.CodeDBError, "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		HandleError(c, tc.err)
		assert.Equal(t, tc.want, w.Code, tc.err.Error())
	}
}

func TestHandleErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(c, errorx.Wrap(errors.New("dial tcp 10.0.0.1:3306"), errorx.CodeDBError, "查询群组 uuid=G1"))
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestHandleParamErrorTranslates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	assert.NoError(t, InitTrans("en"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"frequency":"yearly"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req request.CreateGroupRequest
	err := c.ShouldBindJSON(&req)
	assert.Error(t, err)
	HandleParamError(c, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"title"`)
	assert.Contains(t, w.Body.String(), `"frequency"`)
}

func TestRoundParam(t *testing.T) {
	n, err := roundParam("")
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = roundParam("7")
	assert.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = roundParam("-1")
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}
