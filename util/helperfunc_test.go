package util

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	list := []string{"10:00-11:00", "11:00-12:00"}
	assert.True(t, Contains("10:00-11:00", list))
	assert.False(t, Contains("14:00-15:00", list))
	assert.False(t, Contains("", list))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "John Doe", NormalizeName("  John   Doe "))
	assert.Equal(t, "", NormalizeName("   "))
}

func runResponseHelper(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCallSuccessOK(t *testing.T) {
	w := runResponseHelper(func(c *gin.Context) {
		CallSuccessOK(c, APISuccessParams{Msg: "ok", Data: map[string]int{"n": 1}})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Msg)
}

func TestErrorHelpers_StatusCodes(t *testing.T) {
	cases := []struct {
		fn     func(c *gin.Context, p APIErrorParams)
		status int
	}{
		{CallUserError, http.StatusBadRequest},
		{CallErrorNotFound, http.StatusNotFound},
		{CallConflictError, http.StatusConflict},
		{CallForbiddenError, http.StatusForbidden},
		{CallServerError, http.StatusInternalServerError},
		{CallUserNotAuthorized, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		w := runResponseHelper(func(c *gin.Context) {
			tc.fn(c, APIErrorParams{Msg: "nope", Err: fmt.Errorf("reason")})
		})
		assert.Equal(t, tc.status, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "reason", resp.Error)
	}
}
