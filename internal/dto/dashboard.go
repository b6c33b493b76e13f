package dto

import "semapa/internal/entities"

type DashboardDTO struct {
	TotalArvores           uint64                  `json:"total_arvores"`
	TotalEspecies          uint64                  `json:"total_especies"`
	TotalRequerentes       uint64                  `json:"total_requerentes"`
	TotalRequerimentos     uint64                  `json:"total_requerimentos"`
	RequerimentosPorStatus map[string]int64        `json:"requerimentos_por_status"`
	OrdensPorStatus        map[string]int64        `json:"ordens_por_status"`
	VistoriasPorStatus     map[string]int64        `json:"vistorias_por_status"`
	UltimosRequerimentos   []entities.Requerimento `json:"ultimos_requerimentos"`
	OrdensPendentes        []OrdemServicoDTO       `json:"ordens_pendentes"`
}
