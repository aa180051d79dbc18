package middleware

import (
	"storefront/internal/metrics"

	"github.com/labstack/echo/v4"
)

// ルート（/products/:id のようなテンプレート）単位でリクエスト数を数える。
// ハンドラのエラーはここで c.Error に渡し、確定したステータスを記録する。
func RequestMetrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(c.Request().Method, route, c.Response().Status)
			return nil
		}
	}
}
