package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxSubjectKey  = "subject"   // string
	CtxUserRoleKey = "user_role" // string
)

// /admin 用の Bearer JWT 検証。HS256 のみ、exp は jwt の標準検証に任せる。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return unauthorized(c)
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !token.Valid {
				return unauthorized(c)
			}

			sub, err := parseSubject(claims["sub"])
			if err != nil {
				return unauthorized(c)
			}
			role, _ := claims["role"].(string)
			if role == "" {
				return unauthorized(c)
			}

			c.Set(CtxSubjectKey, sub)
			c.Set(CtxUserRoleKey, role)
			return next(c)
		}
	}
}

// "Authorization: Bearer <token>" から token を取り出す
func bearerToken(r *http.Request) (string, bool) {
	scheme, raw, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
}

// sub は文字列でも数値でもよい
func parseSubject(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return "", errors.New("empty sub")
		}
		return t, nil
	case float64:
		if t <= 0 {
			return "", errors.New("invalid sub")
		}
		return strconv.FormatInt(int64(t), 10), nil
	default:
		return "", errors.New("invalid sub")
	}
}
