package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/products（非公開商品も含めた検索）
type AdminProductHandler struct {
	uc           *usecase.ProductUsecase
	defaultLimit int
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase, defaultLimit int) *AdminProductHandler {
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	return &AdminProductHandler{uc: uc, defaultLimit: defaultLimit}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/products", h.list)
}

func (h *AdminProductHandler) list(c echo.Context) error {
	in, err := parseListInput(c, h.defaultLimit, h.uc.MaxLimit())
	if err != nil {
		return writeParamError(c, err)
	}

	out, err := h.uc.ListAdminProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
