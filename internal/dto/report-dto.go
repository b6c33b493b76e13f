package dto

type EspecieCountDTO struct {
	ID           uint64 `json:"id"`
	NomePopular  string `json:"nome_popular"`
	TotalArvores int64  `json:"total_arvores"`
}

type EspecieReportDTO struct {
	TotalEspecies   int               `json:"total_especies"`
	ComArvores      int               `json:"com_arvores"`
	SemArvores      int               `json:"sem_arvores"`
	TopEspecies     []EspecieCountDTO `json:"top_especies"`
	PorPorte        map[string]int    `json:"por_porte"`
	ArvoresPorPorte map[string]int64  `json:"arvores_por_porte"`
}
