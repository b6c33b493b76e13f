package entities

import (
	"time"

	"semapa/pkg/types"
)

type Arvore struct {
	ID          uint64     `json:"id"`
	Endereco    string     `json:"endereco"`
	Bairro      *string    `json:"bairro"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	DataPlantio *time.Time `json:"data_plantio"`
	Altura      *float64   `json:"altura"`
	DAP         *float64   `json:"dap"`
	Foto        *string    `json:"foto"`
	Observacao  *string    `json:"observacao"`
	EspecieID   *uint64    `json:"especie_id"`
	types.AuditFields
}

func (a *Arvore) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}
