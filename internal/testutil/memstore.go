// Package testutil provides an in-memory implementation of every repository
// interface, used by service and router tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"semapa/internal/entities"
	"semapa/internal/repositories"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
)

type tables struct {
	users         map[uint64]entities.User
	especies      map[uint64]entities.Especie
	requerentes   map[uint64]entities.Requerente
	arvores       map[uint64]entities.Arvore
	requerimentos map[uint64]entities.Requerimento
	ordens        map[uint64]entities.OrdemServico
	vistorias     map[uint64]entities.Vistoria
	fotos         map[uint64][]entities.VistoriaFoto
	history       []entities.StatusHistory
	numeracao     map[string]int
	nextID        uint64
}

func (t tables) clone() tables {
	c := tables{
		users:         make(map[uint64]entities.User, len(t.users)),
		especies:      make(map[uint64]entities.Especie, len(t.especies)),
		requerentes:   make(map[uint64]entities.Requerente, len(t.requerentes)),
		arvores:       make(map[uint64]entities.Arvore, len(t.arvores)),
		requerimentos: make(map[uint64]entities.Requerimento, len(t.requerimentos)),
		ordens:        make(map[uint64]entities.OrdemServico, len(t.ordens)),
		vistorias:     make(map[uint64]entities.Vistoria, len(t.vistorias)),
		fotos:         make(map[uint64][]entities.VistoriaFoto, len(t.fotos)),
		history:       append([]entities.StatusHistory(nil), t.history...),
		numeracao:     make(map[string]int, len(t.numeracao)),
		nextID:        t.nextID,
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.especies {
		c.especies[k] = v
	}
	for k, v := range t.requerentes {
		c.requerentes[k] = v
	}
	for k, v := range t.arvores {
		c.arvores[k] = v
	}
	for k, v := range t.requerimentos {
		c.requerimentos[k] = v
	}
	for k, v := range t.ordens {
		c.ordens[k] = v
	}
	for k, v := range t.vistorias {
		c.vistorias[k] = v
	}
	for k, v := range t.fotos {
		c.fotos[k] = append([]entities.VistoriaFoto(nil), v...)
	}
	for k, v := range t.numeracao {
		c.numeracao[k] = v
	}
	return c
}

// Store keeps every table in memory. RunInTransaction snapshots the tables
// and restores them when the callback fails, so a failed operation leaves
// no trace. Transactions are passed to repositories as a nil pgx.Tx.
type Store struct {
	mu       sync.Mutex
	data     tables
	cache    map[string]string
	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		data: tables{
			users:         map[uint64]entities.User{},
			especies:      map[uint64]entities.Especie{},
			requerentes:   map[uint64]entities.Requerente{},
			arvores:       map[uint64]entities.Arvore{},
			requerimentos: map[uint64]entities.Requerimento{},
			ordens:        map[uint64]entities.OrdemServico{},
			vistorias:     map[uint64]entities.Vistoria{},
			fotos:         map[uint64][]entities.VistoriaFoto{},
			numeracao:     map[string]int{},
		},
		cache:    map[string]string{},
		failures: map[string]error{},
	}
}

// Registry wires the in-memory repositories the way repositories.NewRegistry wires Postgres.
func (s *Store) Registry() *repositories.Registry {
	return &repositories.Registry{
		TxManager:     &txManager{s},
		Users:         &userRepo{s},
		Especies:      &especieRepo{s},
		Requerentes:   &requerenteRepo{s},
		Arvores:       &arvoreRepo{s},
		Requerimentos: &requerimentoRepo{s},
		OrdensServico: &ordemServicoRepo{s},
		Vistorias:     &vistoriaRepo{s},
		Historico:     &historyRepo{s},
		Numeracao:     &numeracaoRepo{s},
		Cache:         &cacheRepo{s},
	}
}

// FailOn makes the named repository call ("Requerimentos.UpdateStatusInTx") return err.
// A nil err clears the failure.
func (s *Store) FailOn(call string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, call)
		return
	}
	s.failures[call] = err
}

// lock acquires the store and returns the injected failure for call, if any.
func (s *Store) lock(call string) error {
	s.mu.Lock()
	return s.failures[call]
}

func (s *Store) id() uint64 {
	s.data.nextID++
	return s.data.nextID
}

// --- seeding helpers ---

func (s *Store) AddUser(u entities.User) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	s.data.users[u.ID] = u
	return u.ID
}

func (s *Store) AddEspecie(e entities.Especie) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.data.especies[e.ID] = e
	return e.ID
}

func (s *Store) AddRequerente(r entities.Requerente) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.data.requerentes[r.ID] = r
	return r.ID
}

func (s *Store) AddArvore(a entities.Arvore) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.data.arvores[a.ID] = a
	return a.ID
}

func (s *Store) AddRequerimento(r entities.Requerimento) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.data.requerimentos[r.ID] = r
	return r.ID
}

func (s *Store) AddVistoria(v entities.Vistoria) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.id()
	s.data.vistorias[v.ID] = v
	return v.ID
}

// Requerimento returns the stored row, bypassing failure injection.
func (s *Store) Requerimento(id uint64) (entities.Requerimento, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.requerimentos[id]
	return r, ok
}

func (s *Store) OrdemServico(id uint64) (entities.OrdemServico, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data.ordens[id]
	return o, ok
}

func (s *Store) Vistoria(id uint64) (entities.Vistoria, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data.vistorias[id]
	return v, ok
}

func (s *Store) HistoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.history)
}

func (s *Store) CacheValue(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[key]
	return v, ok
}

// --- list helpers ---

func filterString(filter types.Filter, key string) (string, bool) {
	v, ok := filter.Filter[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []string:
		if len(t) > 0 {
			return t[0], true
		}
	}
	return fmt.Sprint(v), true
}

func paginate[T any](items []T, filter types.Filter) ([]T, uint64) {
	total := uint64(len(items))
	if filter.Limit <= 0 {
		return items, total
	}
	start := filter.Offset
	if start > len(items) {
		start = len(items)
	}
	end := start + filter.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total
}

func sortedIDs[T any](m map[uint64]T) []uint64 {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func matchesStatus(filter types.Filter, status string) bool {
	if values, ok := filter.Filter["status"].([]string); ok {
		for _, v := range values {
			if v == status {
				return true
			}
		}
		return false
	}
	want, ok := filterString(filter, "status")
	return !ok || want == status
}

// --- transactions ---

type txManager struct{ s *Store }

func (m *txManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.s.mu.Lock()
	snapshot := m.s.data.clone()
	m.s.mu.Unlock()

	if err := fn(nil); err != nil {
		m.s.mu.Lock()
		m.s.data = snapshot
		m.s.mu.Unlock()
		return err
	}
	return nil
}

// --- users ---

type userRepo struct{ s *Store }

func (r *userRepo) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	if err := r.s.lock("Users.FindByID"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("usuário", id)
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.data.users) {
		u := r.s.data.users[id]
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("usuário", 0)
}

func (r *userRepo) List(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]entities.User, 0)
	for _, id := range sortedIDs(r.s.data.users) {
		items = append(items, r.s.data.users[id])
	}
	page, total := paginate(items, filter)
	return page, total, nil
}

func (r *userRepo) Create(ctx context.Context, user *entities.User) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, user.Email) {
			return 0, apperrors.NewConflictError("usuário: registro duplicado (users_email_key)")
		}
	}
	user.ID = r.s.id()
	r.s.data.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepo) Update(ctx context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.data.users[user.ID]
	if !ok {
		return apperrors.NewNotFoundError("usuário", user.ID)
	}
	updated := *user
	updated.Password = current.Password
	r.s.data.users[user.ID] = updated
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return apperrors.NewNotFoundError("usuário", id)
	}
	u.Password = passwordHash
	r.s.data.users[id] = u
	return nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return apperrors.NewNotFoundError("usuário", id)
	}
	u.UltimoLogin = &at
	r.s.data.users[id] = u
	return nil
}

// --- especies ---

type especieRepo struct{ s *Store }

func (r *especieRepo) FindByID(ctx context.Context, id uint64) (*entities.Especie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.data.especies[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("espécie", id)
	}
	return &e, nil
}

func (r *especieRepo) FindByNomePopular(ctx context.Context, nome string) (*entities.Especie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.data.especies) {
		e := r.s.data.especies[id]
		if strings.EqualFold(e.NomePopular, strings.TrimSpace(nome)) {
			return &e, nil
		}
	}
	return nil, apperrors.NewNotFoundError("espécie", 0)
}

func (r *especieRepo) List(ctx context.Context, filter types.Filter) ([]entities.Especie, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]entities.Especie, 0)
	for _, id := range sortedIDs(r.s.data.especies) {
		e := r.s.data.especies[id]
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.NomePopular), strings.ToLower(filter.Search)) {
			continue
		}
		items = append(items, e)
	}
	page, total := paginate(items, filter)
	return page, total, nil
}

func (r *especieRepo) Create(ctx context.Context, especie *entities.Especie) (uint64, error) {
	if err := r.s.lock("Especies.Create"); err != nil {
		r.s.mu.Unlock()
		return 0, err
	}
	defer r.s.mu.Unlock()
	especie.ID = r.s.id()
	r.s.data.especies[especie.ID] = *especie
	return especie.ID, nil
}

func (r *especieRepo) Update(ctx context.Context, especie *entities.Especie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.especies[especie.ID]; !ok {
		return apperrors.NewNotFoundError("espécie", especie.ID)
	}
	r.s.data.especies[especie.ID] = *especie
	return nil
}

func (r *especieRepo) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.especies[id]; !ok {
		return apperrors.NewNotFoundError("espécie", id)
	}
	delete(r.s.data.especies, id)
	return nil
}

func (r *especieRepo) CountArvores(ctx context.Context, id uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.data.arvores {
		if a.EspecieID != nil && *a.EspecieID == id {
			n++
		}
	}
	return n, nil
}

func (r *especieRepo) CountVistorias(ctx context.Context, id uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, v := range r.s.data.vistorias {
		if v.EspecieID != nil && *v.EspecieID == id {
			n++
		}
	}
	return n, nil
}

func (r *especieRepo) ArvoresPorEspecie(ctx context.Context) (map[uint64]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[uint64]int64)
	for _, a := range r.s.data.arvores {
		if a.EspecieID != nil {
			counts[*a.EspecieID]++
		}
	}
	return counts, nil
}

// --- requerentes ---

type requerenteRepo struct{ s *Store }

func (r *requerenteRepo) FindByID(ctx context.Context, id uint64) (*entities.Requerente, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.data.requerentes[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("requerente", id)
	}
	return &req, nil
}

func (r *requerenteRepo) List(ctx context.Context, filter types.Filter) ([]entities.Requerente, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]entities.Requerente, 0)
	for _, id := range sortedIDs(r.s.data.requerentes) {
		items = append(items, r.s.data.requerentes[id])
	}
	page, total := paginate(items, filter)
	return page, total, nil
}

func (r *requerenteRepo) Create(ctx context.Context, requerente *entities.Requerente) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	requerente.ID = r.s.id()
	r.s.data.requerentes[requerente.ID] = *requerente
	return requerente.ID, nil
}

func (r *requerenteRepo) Update(ctx context.Context, requerente *entities.Requerente) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.requerentes[requerente.ID]; !ok {
		return apperrors.NewNotFoundError("requerente", requerente.ID)
	}
	r.s.data.requerentes[requerente.ID] = *requerente
	return nil
}

func (r *requerenteRepo) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.requerentes[id]; !ok {
		return apperrors.NewNotFoundError("requerente", id)
	}
	delete(r.s.data.requerentes, id)
	return nil
}

func (r *requerenteRepo) CountRequerimentos(ctx context.Context, id uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, req := range r.s.data.requerimentos {
		if req.RequerenteID == id {
			n++
		}
	}
	return n, nil
}

// --- arvores ---

type arvoreRepo struct{ s *Store }

func (r *arvoreRepo) FindByID(ctx context.Context, id uint64) (*entities.Arvore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.arvores[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("árvore", id)
	}
	return &a, nil
}

func (r *arvoreRepo) List(ctx context.Context, filter types.Filter) ([]entities.Arvore, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	geo, _ := filterString(filter, "geolocalizada")
	items := make([]entities.Arvore, 0)
	for _, id := range sortedIDs(r.s.data.arvores) {
		a := r.s.data.arvores[id]
		if b, err := strconv.ParseBool(geo); err == nil && a.HasCoordinates() != b {
			continue
		}
		items = append(items, a)
	}
	page, total := paginate(items, filter)
	return page, total, nil
}

func (r *arvoreRepo) Create(ctx context.Context, arvore *entities.Arvore) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	arvore.ID = r.s.id()
	r.s.data.arvores[arvore.ID] = *arvore
	return arvore.ID, nil
}

func (r *arvoreRepo) Update(ctx context.Context, arvore *entities.Arvore) error {
	if err := r.s.lock("Arvores.Update"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.arvores[arvore.ID]; !ok {
		return apperrors.NewNotFoundError("árvore", arvore.ID)
	}
	r.s.data.arvores[arvore.ID] = *arvore
	return nil
}

func (r *arvoreRepo) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.arvores[id]; !ok {
		return apperrors.NewNotFoundError("árvore", id)
	}
	delete(r.s.data.arvores, id)
	return nil
}

func (r *arvoreRepo) CountRequerimentos(ctx context.Context, id uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, req := range r.s.data.requerimentos {
		if req.ArvoreID == id {
			n++
		}
	}
	return n, nil
}

func (r *arvoreRepo) CountVistorias(ctx context.Context, id uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, v := range r.s.data.vistorias {
		if v.ArvoreID != nil && *v.ArvoreID == id {
			n++
		}
	}
	return n, nil
}

// --- requerimentos ---

type requerimentoRepo struct{ s *Store }

func (r *requerimentoRepo) find(id uint64) (*entities.Requerimento, error) {
	req, ok := r.s.data.requerimentos[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("requerimento", id)
	}
	return &req, nil
}

func (r *requerimentoRepo) FindByID(ctx context.Context, id uint64) (*entities.Requerimento, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(id)
}

func (r *requerimentoRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Requerimento, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(id)
}

func (r *requerimentoRepo) List(ctx context.Context, filter types.Filter) ([]entities.Requerimento, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]entities.Requerimento, 0)
	for _, id := range sortedIDs(r.s.data.requerimentos) {
		req := r.s.data.requerimentos[id]
		if matchesStatus(filter, req.Status) {
			items = append(items, req)
		}
	}
	page, total := paginate(items, filter)
	return page, total, nil
}

func (r *requerimentoRepo) CreateInTx(ctx context.Context, tx pgx.Tx, req *entities.Requerimento) (uint64, error) {
	if err := r.s.lock("Requerimentos.CreateInTx"); err != nil {
		r.s.mu.Unlock()
		return 0, err
	}
	defer r.s.mu.Unlock()
	req.ID = r.s.id()
	r.s.data.requerimentos[req.ID] = *req
	return req.ID, nil
}

func (r *requerimentoRepo) UpdateInTx(ctx context.Context, tx pgx.Tx, req *entities.Requerimento) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.requerimentos[req.ID]; !ok {
		return apperrors.NewNotFoundError("requerimento", req.ID)
	}
	r.s.data.requerimentos[req.ID] = *req
	return nil
}

func (r *requerimentoRepo) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, req *entities.Requerimento) error {
	if err := r.s.lock("Requerimentos.UpdateStatusInTx"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.requerimentos[req.ID]; !ok {
		return apperrors.NewNotFoundError("requerimento", req.ID)
	}
	r.s.data.requerimentos[req.ID] = *req
	return nil
}

func (r *requerimentoRepo) DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.requerimentos[id]; !ok {
		return apperrors.NewNotFoundError("requerimento", id)
	}
	delete(r.s.data.requerimentos, id)
	return nil
}

func (r *requerimentoRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[string]int64)
	for _, req := range r.s.data.requerimentos {
		counts[req.Status]++
	}
	return counts, nil
}

// --- ordens de serviço ---

type ordemServicoRepo struct{ s *Store }

func (r *ordemServicoRepo) find(id uint64) (*entities.OrdemServico, error) {
	o, ok := r.s.data.ordens[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("ordem de serviço", id)
	}
	o.RequerimentoIDs = append([]uint64(nil), o.RequerimentoIDs...)
	return &o, nil
}

func (r *ordemServicoRepo) FindByID(ctx context.Context, id uint64) (*entities.OrdemServico, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(id)
}

func (r *ordemServicoRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.OrdemServico, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(id)
}

func (r *ordemServicoRepo) List(ctx context.Context, filter types.Filter) ([]entities.OrdemServico, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]entities.OrdemServico, 0)
	for _, id := range sortedIDs(r.s.data.ordens) {
		o := r.s.data.ordens[id]
		if matchesStatus(filter, o.Status) {
			items = append(items, o)
		}
	}
	page, total := paginate(items, filter)
	return page, total, nil
}

func (r *ordemServicoRepo) CreateInTx(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico) (uint64, error) {
	if err := r.s.lock("OrdensServico.CreateInTx"); err != nil {
		r.s.mu.Unlock()
		return 0, err
	}
	defer r.s.mu.Unlock()
	o.ID = r.s.id()
	r.s.data.ordens[o.ID] = *o
	return o.ID, nil
}

func (r *ordemServicoRepo) UpdateInTx(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.ordens[o.ID]; !ok {
		return apperrors.NewNotFoundError("ordem de serviço", o.ID)
	}
	r.s.data.ordens[o.ID] = *o
	return nil
}

func (r *ordemServicoRepo) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico) error {
	if err := r.s.lock("OrdensServico.UpdateStatusInTx"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	stored, ok := r.s.data.ordens[o.ID]
	if !ok {
		return apperrors.NewNotFoundError("ordem de serviço", o.ID)
	}
	// mirrors the column list of the SQL update
	stored.Status = o.Status
	stored.ResponsavelID = o.ResponsavelID
	stored.DataInicio = o.DataInicio
	stored.DataExecucao = o.DataExecucao
	stored.DataCancelamento = o.DataCancelamento
	stored.Relatorio = o.Relatorio
	stored.MotivoPausa = o.MotivoPausa
	stored.MotivoCancelamento = o.MotivoCancelamento
	stored.CustoReal = o.CustoReal
	stored.AtualizadoPor = o.AtualizadoPor
	stored.DataAtualizacao = o.DataAtualizacao
	r.s.data.ordens[o.ID] = stored
	return nil
}

func (r *ordemServicoRepo) CountActiveByRequerimento(ctx context.Context, tx pgx.Tx, requerimentoID, excludeID uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, o := range r.s.data.ordens {
		if id == excludeID || !o.IsActive() {
			continue
		}
		for _, reqID := range o.RequerimentoIDs {
			if reqID == requerimentoID {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *ordemServicoRepo) CountByRequerimento(ctx context.Context, requerimentoID uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, o := range r.s.data.ordens {
		for _, reqID := range o.RequerimentoIDs {
			if reqID == requerimentoID {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *ordemServicoRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[string]int64)
	for _, o := range r.s.data.ordens {
		counts[o.Status]++
	}
	return counts, nil
}

// --- vistorias ---

type vistoriaRepo struct{ s *Store }

func (r *vistoriaRepo) find(id uint64) (*entities.Vistoria, error) {
	v, ok := r.s.data.vistorias[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("vistoria", id)
	}
	v.Fotos = nil
	return &v, nil
}

func (r *vistoriaRepo) FindByID(ctx context.Context, id uint64) (*entities.Vistoria, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, err := r.find(id)
	if err != nil {
		return nil, err
	}
	v.Fotos = append([]entities.VistoriaFoto{}, r.s.data.fotos[id]...)
	return v, nil
}

func (r *vistoriaRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Vistoria, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(id)
}

func (r *vistoriaRepo) collect(match func(v entities.Vistoria) bool) []entities.Vistoria {
	items := make([]entities.Vistoria, 0)
	for _, id := range sortedIDs(r.s.data.vistorias) {
		v := r.s.data.vistorias[id]
		if match(v) {
			v.Fotos = nil
			items = append(items, v)
		}
	}
	return items
}

func (r *vistoriaRepo) List(ctx context.Context, filter types.Filter) ([]entities.Vistoria, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.collect(func(v entities.Vistoria) bool { return matchesStatus(filter, v.Status) })
	page, total := paginate(items, filter)
	return page, total, nil
}

func (r *vistoriaRepo) ListByOrdemServico(ctx context.Context, ordemServicoID uint64) ([]entities.Vistoria, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(v entities.Vistoria) bool {
		return v.OrdemServicoID != nil && *v.OrdemServicoID == ordemServicoID
	}), nil
}

func (r *vistoriaRepo) Agenda(ctx context.Context, from, to time.Time, tecnicoID *uint64) ([]entities.Vistoria, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(v entities.Vistoria) bool {
		if v.DataVistoria.Before(from) || !v.DataVistoria.Before(to) {
			return false
		}
		return tecnicoID == nil || v.TecnicoID == *tecnicoID
	}), nil
}

func (r *vistoriaRepo) CreateInTx(ctx context.Context, tx pgx.Tx, v *entities.Vistoria) (uint64, error) {
	if err := r.s.lock("Vistorias.CreateInTx"); err != nil {
		r.s.mu.Unlock()
		return 0, err
	}
	defer r.s.mu.Unlock()
	v.ID = r.s.id()
	stored := *v
	stored.Fotos = nil
	r.s.data.vistorias[v.ID] = stored
	return v.ID, nil
}

func (r *vistoriaRepo) store(v *entities.Vistoria) error {
	if _, ok := r.s.data.vistorias[v.ID]; !ok {
		return apperrors.NewNotFoundError("vistoria", v.ID)
	}
	stored := *v
	stored.Fotos = nil
	r.s.data.vistorias[v.ID] = stored
	return nil
}

func (r *vistoriaRepo) UpdateInTx(ctx context.Context, tx pgx.Tx, v *entities.Vistoria) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.store(v)
}

func (r *vistoriaRepo) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, v *entities.Vistoria) error {
	if err := r.s.lock("Vistorias.UpdateStatusInTx"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	return r.store(v)
}

func (r *vistoriaRepo) DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.vistorias[id]; !ok {
		return apperrors.NewNotFoundError("vistoria", id)
	}
	delete(r.s.data.vistorias, id)
	delete(r.s.data.fotos, id)
	return nil
}

func (r *vistoriaRepo) AddFotoInTx(ctx context.Context, tx pgx.Tx, foto *entities.VistoriaFoto) error {
	if err := r.s.lock("Vistorias.AddFotoInTx"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	foto.ID = r.s.id()
	r.s.data.fotos[foto.VistoriaID] = append(r.s.data.fotos[foto.VistoriaID], *foto)
	return nil
}

func (r *vistoriaRepo) ListFotos(ctx context.Context, vistoriaID uint64) ([]entities.VistoriaFoto, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entities.VistoriaFoto{}, r.s.data.fotos[vistoriaID]...), nil
}

func (r *vistoriaRepo) CountByRequerimento(ctx context.Context, requerimentoID uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, v := range r.s.data.vistorias {
		if v.RequerimentoID != nil && *v.RequerimentoID == requerimentoID {
			n++
		}
	}
	return n, nil
}

func (r *vistoriaRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[string]int64)
	for _, v := range r.s.data.vistorias {
		counts[v.Status]++
	}
	return counts, nil
}

// --- histórico ---

type historyRepo struct{ s *Store }

func (r *historyRepo) CreateInTx(ctx context.Context, tx pgx.Tx, h *entities.StatusHistory) error {
	if err := r.s.lock("Historico.CreateInTx"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	h.ID = r.s.id()
	r.s.data.history = append(r.s.data.history, *h)
	return nil
}

func (r *historyRepo) FindByEntity(ctx context.Context, entidade string, entidadeID uint64) ([]entities.StatusHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]entities.StatusHistory, 0)
	for _, h := range r.s.data.history {
		if h.Entidade == entidade && h.EntidadeID == entidadeID {
			items = append(items, h)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CriadoEm.Before(items[j].CriadoEm) })
	return items, nil
}

// --- numeração ---

type numeracaoRepo struct{ s *Store }

func (r *numeracaoRepo) NextInTx(ctx context.Context, tx pgx.Tx, prefixo string, ano int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := fmt.Sprintf("%s/%d", prefixo, ano)
	r.s.data.numeracao[key]++
	return r.s.data.numeracao[key], nil
}

// --- cache ---

type cacheRepo struct{ s *Store }

func (r *cacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	switch v := value.(type) {
	case string:
		r.s.cache[key] = v
	case []byte:
		r.s.cache[key] = string(v)
	default:
		r.s.cache[key] = fmt.Sprint(v)
	}
	return nil
}

func (r *cacheRepo) Get(ctx context.Context, key string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.cache[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (r *cacheRepo) Del(ctx context.Context, keys ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range keys {
		delete(r.s.cache, k)
	}
	return nil
}

func (r *cacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, _ := strconv.ParseInt(r.s.cache[key], 10, 64)
	n++
	r.s.cache[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (r *cacheRepo) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
