package seeders

import "semapa/pkg/constants"

type especieSeed struct {
	NomePopular     string
	NomeCientifico  string
	Porte           string
	AlturaMin       float64
	AlturaMax       float64
	Deciduidade     string
	CorFlor         string
	EpocaFloracao   string
	FrutoComestivel bool
	AtraiFauna      bool
}

// especiesData is the starter catalogue of common street trees.
var especiesData = []especieSeed{
	{"Ipê-amarelo", "Handroanthus albus", constants.PorteMedio, 8, 16, "caducifólia", "amarela", "agosto a setembro", false, true},
	{"Ipê-roxo", "Handroanthus impetiginosus", constants.PorteGrande, 8, 20, "caducifólia", "rosa", "junho a agosto", false, true},
	{"Sibipiruna", "Cenostigma pluviosum", constants.PorteGrande, 8, 16, "semidecídua", "amarela", "setembro a novembro", false, true},
	{"Pau-brasil", "Paubrasilia echinata", constants.PorteMedio, 8, 12, "perenifólia", "amarela", "setembro a outubro", false, true},
	{"Quaresmeira", "Pleroma granulosum", constants.PortePequeno, 4, 8, "perenifólia", "roxa", "fevereiro a abril", false, true},
	{"Resedá", "Lagerstroemia indica", constants.PortePequeno, 3, 6, "caducifólia", "rosa", "novembro a fevereiro", false, false},
	{"Oiti", "Moquilea tomentosa", constants.PorteMedio, 8, 15, "perenifólia", "branca", "junho a agosto", true, true},
	{"Jacarandá-mimoso", "Jacaranda mimosifolia", constants.PorteMedio, 8, 15, "semidecídua", "lilás", "setembro a novembro", false, true},
	{"Aroeira-salsa", "Schinus molle", constants.PorteMedio, 4, 8, "perenifólia", "amarelada", "agosto a novembro", false, true},
	{"Manacá-da-serra", "Pleroma mutabile", constants.PortePequeno, 3, 7, "perenifólia", "branca e roxa", "novembro a fevereiro", false, true},
	{"Sapucaia", "Lecythis pisonis", constants.PorteGrande, 20, 30, "caducifólia", "lilás", "setembro a outubro", true, true},
	{"Pitangueira", "Eugenia uniflora", constants.PortePequeno, 2, 6, "semidecídua", "branca", "agosto a novembro", true, true},
}
