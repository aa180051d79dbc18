package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// =====================
// レスポンス確認用
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// =====================
// helper
// =====================

func mustMakeJWT(t *testing.T, secret string, claims jwt.MapClaims, signingMethod jwt.SigningMethod) string {
	t.Helper()

	token := jwt.NewWithClaims(signingMethod, claims)

	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func adminClaims(sub interface{}, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  1,
		"exp":  9999999999,
	}
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func decodeMWOK(t *testing.T, rec *httptest.ResponseRecorder) mwOKResponse {
	t.Helper()
	var r mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func okHandler(c echo.Context) error {
	sub, _ := c.Get(middleware.CtxSubjectKey).(string)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return c.JSON(http.StatusOK, mwOKResponse{Subject: sub, Role: role})
}

// =====================
// AuthJWT
// =====================

// Authorizationなし => 401
func TestMiddleware_AuthJWT_Unauthorized_NoHeader(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
}

// Bearer形式じゃない => 401
func TestMiddleware_AuthJWT_Unauthorized_BadScheme(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Token abc.def.ghi")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
}

// 署名違い => 401
func TestMiddleware_AuthJWT_Unauthorized_BadSignature(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "correct-secret"}
	raw := mustMakeJWT(t, "wrong-secret", adminClaims("ops", "ADMIN"), jwt.SigningMethodHS256)
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// アルゴリズム違い（HS512）=> 401
func TestMiddleware_AuthJWT_Unauthorized_WrongAlg(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}
	raw := mustMakeJWT(t, cfg.JWTSecret, adminClaims("ops", "ADMIN"), jwt.SigningMethodHS512)
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 期限切れ => 401
func TestMiddleware_AuthJWT_Unauthorized_Expired(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}
	claims := adminClaims("ops", "ADMIN")
	claims["exp"] = 1
	raw := mustMakeJWT(t, cfg.JWTSecret, claims, jwt.SigningMethodHS256)
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// sub / role 欠落 => 401
func TestMiddleware_AuthJWT_Unauthorized_MissingClaims(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg))

	noSub := mustMakeJWT(t, cfg.JWTSecret, jwt.MapClaims{"role": "ADMIN"}, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+noSub)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	noRole := mustMakeJWT(t, cfg.JWTSecret, jwt.MapClaims{"sub": "ops"}, jwt.SigningMethodHS256)
	rec = runRequest(t, e, http.MethodGet, "/protected", "Bearer "+noRole)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 正常：ctxに値が入る（sub は数値でもよい）
func TestMiddleware_AuthJWT_Success_SetsContext(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}
	raw := mustMakeJWT(t, cfg.JWTSecret, adminClaims(123, "USER"), jwt.SigningMethodHS256)
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg))

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeMWOK(t, rec)
	assert.Equal(t, "123", body.Subject)
	assert.Equal(t, "USER", body.Role)
}

// =====================
// AdminRoleGuard
// =====================

func TestMiddleware_AdminRoleGuard_MissingContext(t *testing.T) {
	e := echo.New()
	e.GET("/admin", okHandler, middleware.AdminRoleGuard())

	rec := runRequest(t, e, http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_AdminRoleGuard_ForbiddenForUser(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}
	raw := mustMakeJWT(t, cfg.JWTSecret, adminClaims("u1", "USER"), jwt.SigningMethodHS256)
	e.GET("/admin", okHandler, middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

	rec := runRequest(t, e, http.MethodGet, "/admin", "Bearer "+raw)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin only", decodeMWError(t, rec).Error)
}

func TestMiddleware_AdminRoleGuard_AllowsAdmin(t *testing.T) {
	e := echo.New()
	cfg := config.Config{JWTSecret: "test-secret"}
	raw := mustMakeJWT(t, cfg.JWTSecret, adminClaims("ops", middleware.RoleAdmin), jwt.SigningMethodHS256)
	e.GET("/admin", okHandler, middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

	rec := runRequest(t, e, http.MethodGet, "/admin", "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops", decodeMWOK(t, rec).Subject)
}

// =====================
// RequestMetrics
// =====================

func TestMiddleware_RequestMetrics_RecordsRouteAndStatus(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(middleware.RequestMetrics(m))
	e.GET("/products/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return c.NoContent(http.StatusOK)
	})

	runRequest(t, e, http.MethodGet, "/products/a", "")
	runRequest(t, e, http.MethodGet, "/products/b", "")
	rec := runRequest(t, e, http.MethodGet, "/products/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/products/:id", "404")))
}
