package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/services"
	"semapa/pkg/constants"
	"semapa/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func wantsXLSX(ctx echo.Context) bool {
	return strings.EqualFold(ctx.QueryParam("format"), "xlsx")
}

func (c *ReportController) Requerimentos(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	data, err := c.reportService.Requerimentos(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if wantsXLSX(ctx) {
		rows := make([][]interface{}, 0, len(data))
		for _, r := range data {
			rows = append(rows, requerimentoRow(r))
		}
		return c.respondWithXLSX(ctx, "requerimentos", "Requerimentos", requerimentoHeaders, rows)
	}
	return utils.SuccessResponse(ctx, data, "Relatório de requerimentos", http.StatusOK)
}

func (c *ReportController) OrdensServico(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	data, err := c.reportService.OrdensServico(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if wantsXLSX(ctx) {
		rows := make([][]interface{}, 0, len(data))
		for _, o := range data {
			rows = append(rows, ordemServicoRow(o))
		}
		return c.respondWithXLSX(ctx, "ordens_servico", "Ordens de serviço", ordemServicoHeaders, rows)
	}
	return utils.SuccessResponse(ctx, data, "Relatório de ordens de serviço", http.StatusOK)
}

func (c *ReportController) Vistorias(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	data, err := c.reportService.Vistorias(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if wantsXLSX(ctx) {
		rows := make([][]interface{}, 0, len(data))
		for _, v := range data {
			rows = append(rows, vistoriaRow(v))
		}
		return c.respondWithXLSX(ctx, "vistorias", "Vistorias", vistoriaHeaders, rows)
	}
	return utils.SuccessResponse(ctx, data, "Relatório de vistorias", http.StatusOK)
}

func (c *ReportController) Especies(ctx echo.Context) error {
	data, err := c.reportService.Especies(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if wantsXLSX(ctx) {
		return c.respondWithXLSX(ctx, "especies", "Espécies", especieHeaders, especieRows(data))
	}
	return utils.SuccessResponse(ctx, data, "Relatório de espécies", http.StatusOK)
}

const (
	dateFmt     = "02/01/2006"
	dateTimeFmt = "02/01/2006 15:04"
)

func formatTime(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

func formatMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

var requerimentoHeaders = []string{
	"Número", "Abertura", "Tipo", "Prioridade", "Status", "Requerente", "Árvore",
	"Motivo", "Decisão", "Motivo da decisão", "Conclusão",
}

func requerimentoRow(r entities.Requerimento) []interface{} {
	return []interface{}{
		r.Numero, r.DataAbertura.Format(dateFmt), r.Tipo, r.Prioridade, r.Status,
		r.RequerenteID, r.ArvoreID, utils.SafeDeref(r.Motivo),
		formatTime(r.DataDecisao, dateTimeFmt), utils.SafeDeref(r.MotivoDecisao),
		formatTime(r.DataConclusao, dateTimeFmt),
	}
}

var ordemServicoHeaders = []string{
	"Número", "Emissão", "Programada", "Status", "Prioridade", "Responsável", "Requerimentos",
	"Início", "Execução", "Dias de atraso", "Custo estimado", "Custo real", "Relatório",
}

func ordemServicoRow(o dto.OrdemServicoDTO) []interface{} {
	ids := make([]string, 0, len(o.RequerimentoIDs))
	for _, id := range o.RequerimentoIDs {
		ids = append(ids, fmt.Sprint(id))
	}
	var responsavel interface{} = ""
	if o.ResponsavelID != nil {
		responsavel = *o.ResponsavelID
	}
	return []interface{}{
		o.Numero, o.DataEmissao.Format(dateFmt), formatTime(o.DataProgramada, dateFmt), o.Status,
		o.Prioridade, responsavel, strings.Join(ids, ", "),
		formatTime(o.DataInicio, dateTimeFmt), formatTime(o.DataExecucao, dateTimeFmt), o.DiasAtraso,
		formatMoney(o.CustoEstimado), formatMoney(o.CustoReal), utils.SafeDeref(o.Relatorio),
	}
}

var vistoriaHeaders = []string{
	"ID", "Data", "Status", "Técnico", "Requerimento", "Ordem de serviço", "Árvore",
	"Risco de queda", "Diagnóstico", "Ação recomendada", "Fotos", "Execução",
}

func vistoriaRow(v entities.Vistoria) []interface{} {
	optional := func(id *uint64) interface{} {
		if id == nil {
			return ""
		}
		return *id
	}
	return []interface{}{
		v.ID, v.DataVistoria.Format(dateTimeFmt), v.Status, v.TecnicoID,
		optional(v.RequerimentoID), optional(v.OrdemServicoID), optional(v.ArvoreID),
		utils.SafeDeref(v.RiscoQueda), utils.SafeDeref(v.Diagnostico), utils.SafeDeref(v.AcaoRecomendada),
		len(v.Fotos), formatTime(v.DataExecucao, dateTimeFmt),
	}
}

var especieHeaders = []string{"Espécie", "Árvores cadastradas"}

func especieRows(report *dto.EspecieReportDTO) [][]interface{} {
	rows := make([][]interface{}, 0, len(report.TopEspecies)+len(report.ArvoresPorPorte)+2)
	for _, e := range report.TopEspecies {
		rows = append(rows, []interface{}{e.NomePopular, e.TotalArvores})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Total de espécies", report.TotalEspecies})
	for _, porte := range []string{constants.PortePequeno, constants.PorteMedio, constants.PorteGrande} {
		rows = append(rows, []interface{}{"Árvores de porte " + porte, report.ArvoresPorPorte[porte]})
	}
	return rows
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, name, sheet string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetCellStyle(sheet, "A1", lastCol+"1", style)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}
	f.SetColWidth(sheet, "A", lastCol, 20)

	fileName := fmt.Sprintf("relatorio_%s_%s.xlsx", name, time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
