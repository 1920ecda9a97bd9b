package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ringbuz/ringbuz-api/internal/models"
)

func rbacContext(t *testing.T, claims *models.JWTClaims, paramID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	c.Request = req
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	if paramID != "" {
		c.Params = gin.Params{{Key: "id", Value: paramID}}
	}
	return c, w
}

func TestRBACAllowsMatchingRole(t *testing.T) {
	c, w := rbacContext(t, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}, "")
	RequireRoles(models.RoleAdmin)(c)
	require.False(t, c.IsAborted())
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsOtherRole(t *testing.T) {
	c, w := rbacContext(t, &models.JWTClaims{UserID: "u1", Role: models.RoleUser}, "")
	RequireRoles(models.RoleAdmin)(c)
	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACRejectsAnonymous(t *testing.T) {
	c, w := rbacContext(t, nil, "")
	RequireRoles(models.RoleAdmin)(c)
	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRBACSelfMatchesRouteParam(t *testing.T) {
	c, _ := rbacContext(t, &models.JWTClaims{UserID: "u1", Role: models.RoleUser}, "u1")
	RBAC("SELF", string(models.RoleAdmin))(c)
	require.False(t, c.IsAborted())
}

func TestRBACSelfRejectsOtherUser(t *testing.T) {
	c, w := rbacContext(t, &models.JWTClaims{UserID: "u2", Role: models.RoleUser}, "u1")
	RBAC("SELF", string(models.RoleAdmin))(c)
	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusForbidden, w.Code)
}
