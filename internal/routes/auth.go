package routes

import (
	"github.com/labstack/echo/v4"

	"semapa/internal/controllers"
)

func runAuthRouter(api, secureGroup *echo.Group, authCtrl *controllers.AuthController) {
	api.POST("/auth/login", authCtrl.Login)
	api.POST("/auth/refresh", authCtrl.RefreshToken)
	api.POST("/auth/logout", authCtrl.Logout)

	secureGroup.GET("/auth/me", authCtrl.Me)
	secureGroup.PUT("/auth/password", authCtrl.ChangePassword)
}
