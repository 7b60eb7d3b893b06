package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/karantec/EcommerceMern/internal/entity"
	"github.com/karantec/EcommerceMern/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	products, err := h.productService.GetProducts(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	product, err := h.productService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	created, err := h.productService.CreateProduct(c.Request().Context(), product)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	product.ID = id

	updated, err := h.productService.UpdateProduct(c.Request().Context(), product)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
