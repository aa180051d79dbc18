package handler

import (
	"errors"
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の公開API
type ProductHandler struct {
	uc           *usecase.ProductUsecase
	defaultLimit int
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, defaultLimit int) *ProductHandler {
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	return &ProductHandler{uc: uc, defaultLimit: defaultLimit}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	in, err := parseListInput(c, h.defaultLimit, h.uc.MaxLimit())
	if err != nil {
		return writeParamError(c, err)
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProductDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func writeParamError(c echo.Context, err error) error {
	var pe *paramError
	if errors.As(err, &pe) {
		return badRequest(c, pe.msg)
	}
	return writeError(c, err)
}
