package endpoint

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rakibhasan/carebook/util"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("APPENV", "test")
	os.Setenv("JWTSECRET", "test-secret-123")
	util.SetJWTSecret("test-secret-123")
	os.Exit(m.Run())
}
