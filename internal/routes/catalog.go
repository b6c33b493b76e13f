package routes

import (
	"github.com/labstack/echo/v4"

	"semapa/internal/authz"
	"semapa/internal/controllers"
	"semapa/pkg/middleware"
)

func runEspecieRouter(secureGroup *echo.Group, especieCtrl *controllers.EspecieController, authMW *middleware.AuthMiddleware) {
	especies := secureGroup.Group("/especies")
	especies.GET("", especieCtrl.GetEspecies, authMW.Require(authz.EspecieView))
	especies.GET("/:id", especieCtrl.FindEspecie, authMW.Require(authz.EspecieView))
	especies.POST("", especieCtrl.CreateEspecie, authMW.Require(authz.EspecieCreate))
	especies.POST("/importar", especieCtrl.ImportEspecies, authMW.Require(authz.EspecieImport))
	especies.PUT("/:id", especieCtrl.UpdateEspecie, authMW.Require(authz.EspecieUpdate))
	especies.DELETE("/:id", especieCtrl.DeleteEspecie, authMW.Require(authz.EspecieDelete))
}

func runRequerenteRouter(secureGroup *echo.Group, requerenteCtrl *controllers.RequerenteController, authMW *middleware.AuthMiddleware) {
	requerentes := secureGroup.Group("/requerentes")
	requerentes.GET("", requerenteCtrl.GetRequerentes, authMW.Require(authz.RequerenteView))
	requerentes.GET("/:id", requerenteCtrl.FindRequerente, authMW.Require(authz.RequerenteView))
	requerentes.POST("", requerenteCtrl.CreateRequerente, authMW.Require(authz.RequerenteCreate))
	requerentes.PUT("/:id", requerenteCtrl.UpdateRequerente, authMW.Require(authz.RequerenteUpdate))
	requerentes.DELETE("/:id", requerenteCtrl.DeleteRequerente, authMW.Require(authz.RequerenteDelete))
}

func runArvoreRouter(secureGroup *echo.Group, arvoreCtrl *controllers.ArvoreController, authMW *middleware.AuthMiddleware) {
	arvores := secureGroup.Group("/arvores")
	arvores.GET("", arvoreCtrl.GetArvores, authMW.Require(authz.ArvoreView))
	arvores.GET("/mapa", arvoreCtrl.Mapa, authMW.Require(authz.ArvoreView))
	arvores.GET("/:id", arvoreCtrl.FindArvore, authMW.Require(authz.ArvoreView))
	arvores.POST("", arvoreCtrl.CreateArvore, authMW.Require(authz.ArvoreCreate))
	arvores.PUT("/:id", arvoreCtrl.UpdateArvore, authMW.Require(authz.ArvoreUpdate))
	arvores.POST("/:id/foto", arvoreCtrl.UploadFoto, authMW.Require(authz.ArvoreUpdate))
	arvores.DELETE("/:id", arvoreCtrl.DeleteArvore, authMW.Require(authz.ArvoreDelete))
}
