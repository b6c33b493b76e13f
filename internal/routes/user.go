package routes

import (
	"github.com/labstack/echo/v4"

	"semapa/internal/authz"
	"semapa/internal/controllers"
	"semapa/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	users := secureGroup.Group("/usuarios")
	users.GET("", userCtrl.GetUsers, authMW.Require(authz.UserView))
	users.GET("/:id", userCtrl.FindUser, authMW.Require(authz.UserView))
	users.POST("", userCtrl.CreateUser, authMW.Require(authz.UserCreate))
	users.PUT("/:id", userCtrl.UpdateUser, authMW.Require(authz.UserUpdate))
	users.PATCH("/:id/ativar", userCtrl.Activate, authMW.Require(authz.UserActivation))
	users.PATCH("/:id/desativar", userCtrl.Deactivate, authMW.Require(authz.UserActivation))
}
