package constants

//============== UPLOAD CONTEXTS ==============

type UploadContext string

const (
	UploadContextArvoreFoto    UploadContext = "arvore_foto"
	UploadContextVistoriaFoto  UploadContext = "vistoria_foto"
	UploadContextEspecieImport UploadContext = "especie_import"
)

func (uc UploadContext) String() string {
	return string(uc)
}

//============== CACHE KEYS ==============

const (
	// lockout:<userID> -> "locked"
	CacheKeyLockout = "lockout:%d"

	// login_attempts:<userID> -> count
	CacheKeyLoginAttempts = "login_attempts:%d"

	// dashboard:stats -> JSON snapshot
	CacheKeyDashboardStats = "dashboard:stats"
)

//============== NUMBERING ==============

const (
	PrefixRequerimento = "REQ"
	PrefixOrdemServico = "OS"
)

//============== DOMAIN VALUES ==============

const (
	TipoPoda        = "poda"
	TipoRemocao     = "remocao"
	TipoTransplante = "transplante"
)

const (
	PrioridadeBaixa   = "baixa"
	PrioridadeMedia   = "media"
	PrioridadeAlta    = "alta"
	PrioridadeUrgente = "urgente"
)

const (
	PortePequeno = "pequeno"
	PorteMedio   = "medio"
	PorteGrande  = "grande"
)

const (
	RiscoBaixo = "baixo"
	RiscoMedio = "medio"
	RiscoAlto  = "alto"
)
