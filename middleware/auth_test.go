package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chasekung/Finance-Club/utils"
)

func init() {
	viper.Set("JWT_SECRET", "test-secret")
}

func runChain(t *testing.T, mw []echo.MiddlewareFunc, cookie *http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	require.NoError(t, handler(c))
	return rec, c
}

func TestSessionMiddlewareRejectsMissingCookie(t *testing.T) {
	rec, _ := runChain(t, []echo.MiddlewareFunc{SessionMiddleware}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareRejectsBadToken(t *testing.T) {
	rec, _ := runChain(t, []echo.MiddlewareFunc{SessionMiddleware},
		&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareSetsClaims(t *testing.T) {
	token, err := utils.GenerateSessionToken("user-1", true)
	require.NoError(t, err)

	rec, c := runChain(t, []echo.MiddlewareFunc{SessionMiddleware},
		&http.Cookie{Name: SessionCookieName, Value: token})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", c.Get("user_id"))
	assert.Equal(t, true, c.Get("is_admin"))
}

func TestAdminMiddlewareRejectsNonAdmin(t *testing.T) {
	token, err := utils.GenerateSessionToken("user-1", false)
	require.NoError(t, err)

	rec, _ := runChain(t, []echo.MiddlewareFunc{SessionMiddleware, AdminMiddleware},
		&http.Cookie{Name: SessionCookieName, Value: token})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminMiddlewareAllowsAdmin(t *testing.T) {
	token, err := utils.GenerateSessionToken("admin-1", true)
	require.NoError(t, err)

	rec, _ := runChain(t, []echo.MiddlewareFunc{SessionMiddleware, AdminMiddleware},
		&http.Cookie{Name: SessionCookieName, Value: token})
	assert.Equal(t, http.StatusOK, rec.Code)
}
