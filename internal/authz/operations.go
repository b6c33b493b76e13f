package authz

type Operation string

const (
	EspecieView   Operation = "especies:view"
	EspecieCreate Operation = "especies:create"
	EspecieUpdate Operation = "especies:update"
	EspecieDelete Operation = "especies:delete"
	EspecieImport Operation = "especies:import"

	ArvoreView   Operation = "arvores:view"
	ArvoreCreate Operation = "arvores:create"
	ArvoreUpdate Operation = "arvores:update"
	ArvoreDelete Operation = "arvores:delete"

	RequerenteView   Operation = "requerentes:view"
	RequerenteCreate Operation = "requerentes:create"
	RequerenteUpdate Operation = "requerentes:update"
	RequerenteDelete Operation = "requerentes:delete"

	RequerimentoView     Operation = "requerimentos:view"
	RequerimentoCreate   Operation = "requerimentos:create"
	RequerimentoUpdate   Operation = "requerimentos:update"
	RequerimentoApprove  Operation = "requerimentos:approve"
	RequerimentoReject   Operation = "requerimentos:reject"
	RequerimentoComplete Operation = "requerimentos:complete"
	RequerimentoCancel   Operation = "requerimentos:cancel"
	RequerimentoDelete   Operation = "requerimentos:delete"

	OrdemServicoView     Operation = "ordens_servico:view"
	OrdemServicoCreate   Operation = "ordens_servico:create"
	OrdemServicoUpdate   Operation = "ordens_servico:update"
	OrdemServicoStart    Operation = "ordens_servico:start"
	OrdemServicoPause    Operation = "ordens_servico:pause"
	OrdemServicoComplete Operation = "ordens_servico:complete"
	OrdemServicoCancel   Operation = "ordens_servico:cancel"
	OrdemServicoAssign   Operation = "ordens_servico:assign"

	VistoriaView       Operation = "vistorias:view"
	VistoriaCreate     Operation = "vistorias:create"
	VistoriaUpdate     Operation = "vistorias:update"
	VistoriaStart      Operation = "vistorias:start"
	VistoriaExecute    Operation = "vistorias:execute"
	VistoriaCancel     Operation = "vistorias:cancel"
	VistoriaReschedule Operation = "vistorias:reschedule"
	VistoriaUploadFoto Operation = "vistorias:upload_foto"
	VistoriaDelete     Operation = "vistorias:delete"

	UserView       Operation = "usuarios:view"
	UserCreate     Operation = "usuarios:create"
	UserUpdate     Operation = "usuarios:update"
	UserActivation Operation = "usuarios:activation"

	DashboardView Operation = "dashboard:view"
	ReportView    Operation = "relatorios:view"
)

var rules = map[Operation]Rule{
	EspecieView:   {MinLevel: LevelUsuario},
	EspecieCreate: {MinLevel: LevelTecnico},
	EspecieUpdate: {MinLevel: LevelTecnico},
	EspecieDelete: {MinLevel: LevelAdmin},
	EspecieImport: {MinLevel: LevelAdmin},

	ArvoreView:   {MinLevel: LevelUsuario},
	ArvoreCreate: {MinLevel: LevelTecnico},
	ArvoreUpdate: {MinLevel: LevelTecnico},
	ArvoreDelete: {MinLevel: LevelAdmin},

	RequerenteView:   {MinLevel: LevelUsuario},
	RequerenteCreate: {MinLevel: LevelTecnico},
	RequerenteUpdate: {MinLevel: LevelTecnico},
	RequerenteDelete: {MinLevel: LevelAdmin},

	RequerimentoView:     {MinLevel: LevelUsuario},
	RequerimentoCreate:   {MinLevel: LevelUsuario},
	RequerimentoUpdate:   {MinLevel: LevelTecnico, OwnerMayAct: true},
	RequerimentoApprove:  {MinLevel: LevelAdmin},
	RequerimentoReject:   {MinLevel: LevelAdmin},
	RequerimentoComplete: {MinLevel: LevelTecnico},
	RequerimentoCancel:   {MinLevel: LevelTecnico, OwnerMayAct: true},
	RequerimentoDelete:   {MinLevel: LevelAdmin},

	OrdemServicoView:     {MinLevel: LevelUsuario},
	OrdemServicoCreate:   {MinLevel: LevelTecnico},
	OrdemServicoUpdate:   {MinLevel: LevelTecnico},
	OrdemServicoStart:    {MinLevel: LevelTecnico},
	OrdemServicoPause:    {MinLevel: LevelTecnico},
	OrdemServicoComplete: {MinLevel: LevelTecnico},
	OrdemServicoCancel:   {MinLevel: LevelAdmin},
	OrdemServicoAssign:   {MinLevel: LevelTecnico},

	VistoriaView:       {MinLevel: LevelUsuario},
	VistoriaCreate:     {MinLevel: LevelTecnico},
	VistoriaUpdate:     {MinLevel: LevelTecnico, OwnerMayAct: true},
	VistoriaStart:      {MinLevel: LevelTecnico},
	VistoriaExecute:    {MinLevel: LevelTecnico},
	VistoriaCancel:     {MinLevel: LevelTecnico},
	VistoriaReschedule: {MinLevel: LevelTecnico},
	VistoriaUploadFoto: {MinLevel: LevelTecnico, OwnerMayAct: true},
	VistoriaDelete:     {MinLevel: LevelAdmin},

	UserView:       {MinLevel: LevelAdmin},
	UserCreate:     {MinLevel: LevelAdmin},
	UserUpdate:     {MinLevel: LevelAdmin},
	UserActivation: {MinLevel: LevelAdmin},

	DashboardView: {MinLevel: LevelUsuario},
	ReportView:    {MinLevel: LevelTecnico},
}
