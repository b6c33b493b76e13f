package constants

import "strings"

// --- Requerimento ---
const (
	RequerimentoPendente  = "pendente"
	RequerimentoAprovado  = "aprovado"
	RequerimentoNegado    = "negado"
	RequerimentoConcluido = "concluido"
	RequerimentoCancelado = "cancelado"
)

var RequerimentoStatuses = []string{
	RequerimentoPendente, RequerimentoAprovado, RequerimentoNegado,
	RequerimentoConcluido, RequerimentoCancelado,
}

// --- Ordem de serviço ---
const (
	OrdemServicoPendente    = "pendente"
	OrdemServicoEmAndamento = "em_andamento"
	OrdemServicoConcluida   = "concluida"
	OrdemServicoCancelada   = "cancelada"
)

var OrdemServicoStatuses = []string{
	OrdemServicoPendente, OrdemServicoEmAndamento, OrdemServicoConcluida, OrdemServicoCancelada,
}

// ActiveOrdemServicoStatuses block a second order for the same request.
var ActiveOrdemServicoStatuses = []string{OrdemServicoPendente, OrdemServicoEmAndamento}

// --- Vistoria ---
const (
	VistoriaAgendada    = "agendada"
	VistoriaEmAndamento = "em_andamento"
	VistoriaConcluida   = "concluida"
	VistoriaCancelada   = "cancelada"
)

var VistoriaStatuses = []string{
	VistoriaAgendada, VistoriaEmAndamento, VistoriaConcluida, VistoriaCancelada,
}

var vistoriaAliases = map[string]string{
	"pendente":   VistoriaAgendada,
	"finalizada": VistoriaConcluida,
}

// NormalizeVistoriaStatus accepts canonical and legacy labels ("Pendente", "Finalizada")
// and returns the canonical value, or "" when the label is unknown.
func NormalizeVistoriaStatus(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	if alias, ok := vistoriaAliases[s]; ok {
		return alias
	}
	for _, known := range VistoriaStatuses {
		if s == known {
			return known
		}
	}
	return ""
}

// --- Histórico ---
const (
	EntidadeRequerimento = "requerimento"
	EntidadeOrdemServico = "ordem_servico"
	EntidadeVistoria     = "vistoria"
)
