package dto

import "github.com/aarondl/null/v8"

type CreateArvoreDTO struct {
	Endereco    string   `json:"endereco" validate:"required,max=255"`
	Bairro      *string  `json:"bairro" validate:"omitempty,max=100"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	DataPlantio *string  `json:"data_plantio" validate:"omitempty,date_ymd"`
	Altura      *float64 `json:"altura" validate:"omitempty,gte=0"`
	DAP         *float64 `json:"dap" validate:"omitempty,gte=0"`
	Foto        *string  `json:"foto" validate:"omitempty,max=255"`
	Observacao  *string  `json:"observacao"`
	EspecieID   *uint64  `json:"especie_id" validate:"omitempty,gt=0"`
}

type UpdateArvoreDTO struct {
	Endereco    null.String  `json:"endereco" validate:"omitempty,max=255"`
	Bairro      null.String  `json:"bairro" validate:"omitempty,max=100"`
	Latitude    null.Float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   null.Float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	DataPlantio null.String  `json:"data_plantio" validate:"omitempty,date_ymd"`
	Altura      null.Float64 `json:"altura" validate:"omitempty,gte=0"`
	DAP         null.Float64 `json:"dap" validate:"omitempty,gte=0"`
	Foto        null.String  `json:"foto" validate:"omitempty,max=255"`
	Observacao  null.String  `json:"observacao"`
	EspecieID   null.Uint64  `json:"especie_id" validate:"omitempty,gt=0"`
}

// GeoJSON FeatureCollection of geolocated trees.
type ArvoreMapaDTO struct {
	Type     string             `json:"type"`
	Features []ArvoreFeatureDTO `json:"features"`
}

type ArvoreFeatureDTO struct {
	Type       string                 `json:"type"`
	Geometry   GeometryDTO            `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type GeometryDTO struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}
