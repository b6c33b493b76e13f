package repositories

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"semapa/internal/entities"
	"semapa/pkg/constants"
	"semapa/pkg/database/postgresql"
)

var testPool *pgxpool.Pool

// TestMain connects to TEST_DATABASE_URL when set and applies the migrations.
// Without it only the tests that need no database run.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	pool, err := postgresql.ConnectDB(ctx, dsn, zap.NewNop())
	if err != nil {
		log.Fatalf("Não foi possível conectar ao banco de teste: %v", err)
	}
	if err := postgresql.Migrate(ctx, pool, "up"); err != nil {
		pool.Close()
		log.Fatalf("Não foi possível aplicar as migrações: %v", err)
	}
	testPool = pool

	code := m.Run()
	pool.Close()
	os.Exit(code)
}

func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL não definida")
	}
	cleanupTables(t, testPool)
	return testPool
}

func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `TRUNCATE TABLE status_historico, vistoria_fotos, vistorias,
		ordem_servico_requerimento, ordens_servico, requerimentos, arvores, requerentes, especies, numeracao, users
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

// seedRequerimento inserts the user, requester and tree a request needs.
func seedRequerimento(t *testing.T, pool *pgxpool.Pool) (userID, reqID uint64) {
	t.Helper()
	ctx := context.Background()
	err := pool.QueryRow(ctx, `INSERT INTO users (nome, email, password, nivel) VALUES ('Técnico', 'tecnico@semapa.test', 'x', 2) RETURNING id`).Scan(&userID)
	require.NoError(t, err)

	var requerenteID, arvoreID uint64
	err = pool.QueryRow(ctx, `INSERT INTO requerentes (nome) VALUES ('Maria') RETURNING id`).Scan(&requerenteID)
	require.NoError(t, err)
	err = pool.QueryRow(ctx, `INSERT INTO arvores (endereco) VALUES ('Rua das Flores, 10') RETURNING id`).Scan(&arvoreID)
	require.NoError(t, err)

	err = pool.QueryRow(ctx, `INSERT INTO requerimentos (numero, tipo, status, requerente_id, arvore_id)
		VALUES ('REQ/2024/0001', 'poda', 'aprovado', $1, $2) RETURNING id`, requerenteID, arvoreID).Scan(&reqID)
	require.NoError(t, err)
	return userID, reqID
}

func createOrdem(t *testing.T, txm TxManagerInterface, repo OrdemServicoRepositoryInterface, numero string, userID uint64, reqIDs ...uint64) uint64 {
	t.Helper()
	observacao := "levar escada"
	o := &entities.OrdemServico{
		Numero:          numero,
		Status:          constants.OrdemServicoPendente,
		Prioridade:      constants.PrioridadeAlta,
		DataEmissao:     time.Now(),
		Observacao:      &observacao,
		RequerimentoIDs: reqIDs,
	}
	o.CriadoPor = &userID
	o.DataCriacao = time.Now()

	var id uint64
	err := txm.RunInTransaction(context.Background(), func(tx pgx.Tx) error {
		var err error
		id, err = repo.CreateInTx(context.Background(), tx, o)
		return err
	})
	require.NoError(t, err)
	return id
}

func updateStatus(t *testing.T, txm TxManagerInterface, repo OrdemServicoRepositoryInterface, o *entities.OrdemServico) {
	t.Helper()
	err := txm.RunInTransaction(context.Background(), func(tx pgx.Tx) error {
		return repo.UpdateStatusInTx(context.Background(), tx, o)
	})
	require.NoError(t, err)
}

func TestOrdemServicoRepository_Integration_UpdateStatusKeepsEditableColumns(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	txm := NewTxManager(pool)
	repo := NewOrdemServicoRepository(pool, zap.NewNop())
	userID, reqID := seedRequerimento(t, pool)
	id := createOrdem(t, txm, repo, "OS/2024/0001", userID, reqID)

	o, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []uint64{reqID}, o.RequerimentoIDs)

	started := time.Now()
	outra := "não deve ser gravada"
	o.Status = constants.OrdemServicoEmAndamento
	o.DataInicio = &started
	o.ResponsavelID = &userID
	o.Prioridade = constants.PrioridadeUrgente
	o.Observacao = &outra
	updateStatus(t, txm, repo, o)

	reloaded, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, constants.OrdemServicoEmAndamento, reloaded.Status)
	require.NotNil(t, reloaded.ResponsavelID)
	assert.Equal(t, userID, *reloaded.ResponsavelID)
	assert.NotNil(t, reloaded.DataInicio)
	assert.Equal(t, constants.PrioridadeAlta, reloaded.Prioridade)
	require.NotNil(t, reloaded.Observacao)
	assert.Equal(t, "levar escada", *reloaded.Observacao)
}

func TestOrdemServicoRepository_Integration_CountActiveIgnoresCancelled(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	txm := NewTxManager(pool)
	repo := NewOrdemServicoRepository(pool, zap.NewNop())
	userID, reqID := seedRequerimento(t, pool)

	ativaID := createOrdem(t, txm, repo, "OS/2024/0001", userID, reqID)
	canceladaID := createOrdem(t, txm, repo, "OS/2024/0002", userID, reqID)

	n, err := repo.CountActiveByRequerimento(ctx, nil, reqID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	cancelada, err := repo.FindByID(ctx, canceladaID)
	require.NoError(t, err)
	agora := time.Now()
	motivo := "duplicada"
	cancelada.Status = constants.OrdemServicoCancelada
	cancelada.DataCancelamento = &agora
	cancelada.MotivoCancelamento = &motivo
	updateStatus(t, txm, repo, cancelada)

	n, err = repo.CountActiveByRequerimento(ctx, nil, reqID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.CountActiveByRequerimento(ctx, nil, reqID, ativaID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	total, err := repo.CountByRequerimento(ctx, reqID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
