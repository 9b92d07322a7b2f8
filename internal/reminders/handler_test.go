package reminders

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext(authorization string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/reminders/run", nil)
	if authorization != "" {
		c.Request.Header.Set("Authorization", authorization)
	}
	return c
}

func TestAuthorizedOpenWhenNoSecret(t *testing.T) {
	h := NewHandler(nil, nil, "")
	if !h.authorized(testContext("")) {
		t.Error("empty secret must leave the endpoint open")
	}
}

func TestAuthorizedSecret(t *testing.T) {
	h := NewHandler(nil, nil, "cron-secret")

	if h.authorized(testContext("")) {
		t.Error("missing header accepted")
	}
	if h.authorized(testContext("Bearer wrong")) {
		t.Error("wrong secret accepted")
	}
	if h.authorized(testContext("cron-secret")) {
		t.Error("bare token without Bearer prefix accepted")
	}
	if !h.authorized(testContext("Bearer cron-secret")) {
		t.Error("correct secret rejected")
	}
}
