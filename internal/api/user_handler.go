package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/karantec/EcommerceMern/internal/entity"
	"github.com/karantec/EcommerceMern/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Register(c echo.Context) error {
	req := entity.RegisterRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.Register(c.Request().Context(), req)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c echo.Context) error {
	req := entity.LoginRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	token, user, err := h.userService.Login(c.Request().Context(), req)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
