package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finnova-banking-ledger/internal/platform/httpserver/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CorrelationIDKey, "corr-1")
	return c, rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestRespondHelpers(t *testing.T) {
	tests := []struct {
		name       string
		respond    func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{"OK", func(c *gin.Context) { RespondOK(c, gin.H{"id": "1"}) }, http.StatusOK, ""},
		{"Created", func(c *gin.Context) { RespondCreated(c, gin.H{"id": "1"}) }, http.StatusCreated, ""},
		{"BadRequest", func(c *gin.Context) { RespondBadRequest(c, "bad input") }, http.StatusBadRequest, CodeBadRequest},
		{"Internal", RespondInternalError, http.StatusInternalServerError, CodeInternal},
		{"Custom", func(c *gin.Context) {
			RespondWithError(c, http.StatusForbidden, CodeOverdueDebt, "overdue")
		}, http.StatusForbidden, CodeOverdueDebt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rr := newContext()
			tt.respond(c)

			assert.Equal(t, tt.wantStatus, rr.Code)
			resp := decode(t, rr)
			assert.Equal(t, "corr-1", resp.CorrelationID)
			if tt.wantCode == "" {
				assert.Nil(t, resp.Error)
				assert.NotNil(t, resp.Data)
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestRespondInternalError_HidesDetails(t *testing.T) {
	c, rr := newContext()
	RespondInternalError(c)
	assert.Equal(t, internalErrorMessage, decode(t, rr).Error.Message)
}

func TestRespondWithPage(t *testing.T) {
	c, rr := newContext()
	RespondWithPage(c, []string{"a", "b"}, 2, 4, 11)

	resp := decode(t, rr)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, MetaInfo{Limit: 2, Offset: 4, TotalItems: 11}, *resp.Meta)
}

func TestRespondNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.DELETE("/x", RespondNoContent)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}
