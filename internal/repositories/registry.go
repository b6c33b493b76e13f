package repositories

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Registry groups every repository the services depend on.
type Registry struct {
	TxManager     TxManagerInterface
	Users         UserRepositoryInterface
	Especies      EspecieRepositoryInterface
	Requerentes   RequerenteRepositoryInterface
	Arvores       ArvoreRepositoryInterface
	Requerimentos RequerimentoRepositoryInterface
	OrdensServico OrdemServicoRepositoryInterface
	Vistorias     VistoriaRepositoryInterface
	Historico     StatusHistoryRepositoryInterface
	Numeracao     NumeracaoRepositoryInterface
	Cache         CacheRepositoryInterface
}

func NewRegistry(pool *pgxpool.Pool, redisClient *redis.Client, logger *zap.Logger) *Registry {
	return &Registry{
		TxManager:     NewTxManager(pool),
		Users:         NewUserRepository(pool, logger),
		Especies:      NewEspecieRepository(pool, logger),
		Requerentes:   NewRequerenteRepository(pool, logger),
		Arvores:       NewArvoreRepository(pool, logger),
		Requerimentos: NewRequerimentoRepository(pool, logger),
		OrdensServico: NewOrdemServicoRepository(pool, logger),
		Vistorias:     NewVistoriaRepository(pool, logger),
		Historico:     NewStatusHistoryRepository(pool),
		Numeracao:     NewNumeracaoRepository(),
		Cache:         NewRedisCacheRepository(redisClient),
	}
}
