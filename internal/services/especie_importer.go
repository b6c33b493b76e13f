package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/repositories"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
)

// especieColumn maps a catalogue column to the header keywords that identify it.
type especieColumn struct {
	field    string
	keywords []string
}

var especieColumns = []especieColumn{
	{"nome_popular", []string{"nome popular", "nome_popular"}},
	{"nome_cientifico", []string{"nome cientifico", "nome científico", "nome_cientifico"}},
	{"porte", []string{"porte"}},
	{"altura_min", []string{"altura min", "altura mínima", "altura_min"}},
	{"altura_max", []string{"altura max", "altura máxima", "altura_max"}},
	{"longevidade_min", []string{"longevidade min", "longevidade mínima", "longevidade_min"}},
	{"longevidade_max", []string{"longevidade max", "longevidade máxima", "longevidade_max"}},
	{"deciduidade", []string{"deciduidade"}},
	{"cor_flor", []string{"cor da flor", "cor_flor", "cor flor"}},
	{"epoca_floracao", []string{"floração", "floracao"}},
	{"fruto_comestivel", []string{"comestível", "comestivel"}},
	{"epoca_frutificacao", []string{"frutificação", "frutificacao"}},
	{"necessidade_rega", []string{"rega"}},
	{"atrai_fauna", []string{"fauna"}},
	{"observacoes", []string{"observações", "observacoes"}},
	{"link_foto", []string{"foto", "link"}},
}

// EspecieImporter loads a species catalogue from an XLSX workbook. Species
// whose nome_popular already exists are skipped, not updated.
type EspecieImporter struct {
	especieRepo repositories.EspecieRepositoryInterface
	logger      *zap.Logger
}

func NewEspecieImporter(especieRepo repositories.EspecieRepositoryInterface, logger *zap.Logger) *EspecieImporter {
	return &EspecieImporter{especieRepo: especieRepo, logger: logger}
}

func (imp *EspecieImporter) Import(ctx context.Context, file io.Reader, actorID uint64, now time.Time) (*dto.EspecieImportResultDTO, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperrors.NewValidationError("arquivo", "não foi possível abrir a planilha: %v", err)
	}
	defer f.Close()

	rows, headerRow, index := findEspecieHeader(f)
	if headerRow < 0 {
		return nil, apperrors.NewValidationError("arquivo", "cabeçalho não encontrado: a planilha precisa das colunas 'Nome popular' e 'Nome científico'")
	}

	result := &dto.EspecieImportResultDTO{Erros: []string{}}
	for i := headerRow + 1; i < len(rows); i++ {
		line := i + 1
		row := rows[i]
		get := func(field string) string {
			col, ok := index[field]
			if !ok || col >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[col])
		}
		if get("nome_popular") == "" && get("nome_cientifico") == "" {
			continue
		}

		e, err := parseEspecieRow(get)
		if err != nil {
			result.Erros = append(result.Erros, fmt.Sprintf("linha %d: %v", line, err))
			continue
		}

		if _, err := imp.especieRepo.FindByNomePopular(ctx, e.NomePopular); err == nil {
			result.Ignoradas++
			continue
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		if actorID != 0 {
			e.CriadoPor = &actorID
		}
		e.DataCriacao = now
		if _, err := imp.especieRepo.Create(ctx, e); err != nil {
			result.Erros = append(result.Erros, fmt.Sprintf("linha %d: %v", line, err))
			continue
		}
		result.Criadas++
	}

	imp.logger.Info("Importação de espécies concluída",
		zap.Int("criadas", result.Criadas),
		zap.Int("ignoradas", result.Ignoradas),
		zap.Int("erros", len(result.Erros)),
	)
	return result, nil
}

func findEspecieHeader(f *excelize.File) ([][]string, int, map[string]int) {
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for rIdx, row := range rows {
			index := make(map[string]int)
			for cIdx, cell := range row {
				name := strings.ToLower(strings.TrimSpace(cell))
				if name == "" {
					continue
				}
				for _, col := range especieColumns {
					if _, taken := index[col.field]; taken {
						continue
					}
					if matchesAny(name, col.keywords) {
						index[col.field] = cIdx
						break
					}
				}
			}
			_, hasPopular := index["nome_popular"]
			_, hasCientifico := index["nome_cientifico"]
			if hasPopular && hasCientifico {
				return rows, rIdx, index
			}
		}
	}
	return nil, -1, nil
}

func matchesAny(name string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

func parseEspecieRow(get func(string) string) (*entities.Especie, error) {
	e := &entities.Especie{
		NomePopular:    get("nome_popular"),
		NomeCientifico: get("nome_cientifico"),
	}
	if e.NomePopular == "" || e.NomeCientifico == "" {
		return nil, errors.New("nome popular e nome científico são obrigatórios")
	}

	porte, err := normalizePorte(get("porte"))
	if err != nil {
		return nil, err
	}
	e.Porte = porte

	if e.AlturaMin, err = parseOptionalFloat(get("altura_min")); err != nil {
		return nil, fmt.Errorf("altura mínima: %w", err)
	}
	if e.AlturaMax, err = parseOptionalFloat(get("altura_max")); err != nil {
		return nil, fmt.Errorf("altura máxima: %w", err)
	}
	if e.LongevidadeMin, err = parseOptionalInt(get("longevidade_min")); err != nil {
		return nil, fmt.Errorf("longevidade mínima: %w", err)
	}
	if e.LongevidadeMax, err = parseOptionalInt(get("longevidade_max")); err != nil {
		return nil, fmt.Errorf("longevidade máxima: %w", err)
	}
	if err := e.ValidateRanges(); err != nil {
		return nil, err
	}

	e.Deciduidade = optionalText(get("deciduidade"))
	e.CorFlor = optionalText(get("cor_flor"))
	e.EpocaFloracao = optionalText(get("epoca_floracao"))
	e.FrutoComestivel = parseOptionalBool(get("fruto_comestivel"))
	e.EpocaFrutificacao = optionalText(get("epoca_frutificacao"))
	e.NecessidadeRega = optionalText(get("necessidade_rega"))
	e.AtraiFauna = parseOptionalBool(get("atrai_fauna"))
	e.Observacoes = optionalText(get("observacoes"))
	e.LinkFoto = optionalText(get("link_foto"))
	return e, nil
}

func normalizePorte(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, "é", "e")
	switch v {
	case constants.PortePequeno, constants.PorteMedio, constants.PorteGrande:
		return v, nil
	case "":
		return "", errors.New("porte é obrigatório")
	}
	return "", fmt.Errorf("porte %q inválido, use pequeno, médio ou grande", value)
}

func parseOptionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("número inválido %q", value)
	}
	return &f, nil
}

func parseOptionalInt(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("número inteiro inválido %q", value)
	}
	return &n, nil
}

func parseOptionalBool(value string) *bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sim", "s", "true", "1", "x":
		b := true
		return &b
	case "não", "nao", "n", "false", "0":
		b := false
		return &b
	}
	return nil
}

func optionalText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
