package api

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/karantec/EcommerceMern/internal/service"
)

// currentClaims extracts the claims the JWT middleware stored on the context.
// Nil when the route is unauthenticated or the token has a different shape.
func currentClaims(c echo.Context) *service.JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*service.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// AdminOnly gates a route behind the isAdmin claim. It must run after the
// JWT middleware.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := currentClaims(c)
		if claims == nil || !claims.IsAdmin {
			return c.JSON(403, map[string]string{"error": "admin access required"})
		}
		return next(c)
	}
}
