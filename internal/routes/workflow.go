package routes

import (
	"github.com/labstack/echo/v4"

	"semapa/internal/authz"
	"semapa/internal/controllers"
	"semapa/pkg/middleware"
)

func runRequerimentoRouter(secureGroup *echo.Group, ctrl *controllers.RequerimentoController, authMW *middleware.AuthMiddleware) {
	r := secureGroup.Group("/requerimentos")
	r.GET("", ctrl.GetRequerimentos, authMW.Require(authz.RequerimentoView))
	r.GET("/:id", ctrl.FindRequerimento, authMW.Require(authz.RequerimentoView))
	r.GET("/:id/historico", ctrl.History, authMW.Require(authz.RequerimentoView))
	r.POST("", ctrl.CreateRequerimento, authMW.Require(authz.RequerimentoCreate))
	r.PUT("/:id", ctrl.UpdateRequerimento, authMW.Require(authz.RequerimentoUpdate))
	r.POST("/:id/aprovar", ctrl.Approve, authMW.Require(authz.RequerimentoApprove))
	r.POST("/:id/negar", ctrl.Reject, authMW.Require(authz.RequerimentoReject))
	r.POST("/:id/concluir", ctrl.Complete, authMW.Require(authz.RequerimentoComplete))
	r.POST("/:id/cancelar", ctrl.Cancel, authMW.Require(authz.RequerimentoCancel))
	r.DELETE("/:id", ctrl.DeleteRequerimento, authMW.Require(authz.RequerimentoDelete))
}

func runOrdemServicoRouter(secureGroup *echo.Group, ctrl *controllers.OrdemServicoController, authMW *middleware.AuthMiddleware) {
	ordens := secureGroup.Group("/ordens-servico")
	ordens.GET("", ctrl.GetOrdensServico, authMW.Require(authz.OrdemServicoView))
	ordens.GET("/:id", ctrl.FindOrdemServico, authMW.Require(authz.OrdemServicoView))
	ordens.GET("/:id/vistorias", ctrl.GetVistorias, authMW.Require(authz.OrdemServicoView))
	ordens.GET("/:id/historico", ctrl.History, authMW.Require(authz.OrdemServicoView))
	ordens.POST("", ctrl.CreateOrdemServico, authMW.Require(authz.OrdemServicoCreate))
	ordens.PUT("/:id", ctrl.UpdateOrdemServico, authMW.Require(authz.OrdemServicoUpdate))
	ordens.POST("/:id/iniciar", ctrl.Start, authMW.Require(authz.OrdemServicoStart))
	ordens.POST("/:id/pausar", ctrl.Pause, authMW.Require(authz.OrdemServicoPause))
	ordens.POST("/:id/concluir", ctrl.Complete, authMW.Require(authz.OrdemServicoComplete))
	ordens.POST("/:id/cancelar", ctrl.Cancel, authMW.Require(authz.OrdemServicoCancel))
	ordens.POST("/:id/atribuir", ctrl.AssignTechnician, authMW.Require(authz.OrdemServicoAssign))
}

func runVistoriaRouter(secureGroup *echo.Group, ctrl *controllers.VistoriaController, authMW *middleware.AuthMiddleware) {
	v := secureGroup.Group("/vistorias")
	v.GET("", ctrl.GetVistorias, authMW.Require(authz.VistoriaView))
	v.GET("/agenda", ctrl.Agenda, authMW.Require(authz.VistoriaView))
	v.GET("/:id", ctrl.FindVistoria, authMW.Require(authz.VistoriaView))
	v.GET("/:id/historico", ctrl.History, authMW.Require(authz.VistoriaView))
	v.POST("", ctrl.CreateVistoria, authMW.Require(authz.VistoriaCreate))
	v.PUT("/:id", ctrl.UpdateVistoria, authMW.Require(authz.VistoriaUpdate))
	v.POST("/:id/iniciar", ctrl.Start, authMW.Require(authz.VistoriaStart))
	v.POST("/:id/executar", ctrl.Execute, authMW.Require(authz.VistoriaExecute))
	v.POST("/:id/cancelar", ctrl.Cancel, authMW.Require(authz.VistoriaCancel))
	v.POST("/:id/reagendar", ctrl.Reschedule, authMW.Require(authz.VistoriaReschedule))
	v.POST("/:id/fotos", ctrl.AddFotos, authMW.Require(authz.VistoriaUploadFoto))
	v.DELETE("/:id", ctrl.DeleteVistoria, authMW.Require(authz.VistoriaDelete))
}

func runReportRouter(
	secureGroup *echo.Group,
	dashboardCtrl *controllers.DashboardController,
	reportCtrl *controllers.ReportController,
	authMW *middleware.AuthMiddleware,
) {
	secureGroup.GET("/dashboard", dashboardCtrl.GetDashboard, authMW.Require(authz.DashboardView))

	reports := secureGroup.Group("/relatorios", authMW.Require(authz.ReportView))
	reports.GET("/requerimentos", reportCtrl.Requerimentos)
	reports.GET("/ordens-servico", reportCtrl.OrdensServico)
	reports.GET("/vistorias", reportCtrl.Vistorias)
	reports.GET("/especies", reportCtrl.Especies)
}
