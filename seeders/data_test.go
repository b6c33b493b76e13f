package seeders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"semapa/pkg/constants"
)

func TestEspeciesData_IsConsistent(t *testing.T) {
	validPorte := map[string]bool{
		constants.PortePequeno: true,
		constants.PorteMedio:   true,
		constants.PorteGrande:  true,
	}
	seen := make(map[string]bool, len(especiesData))

	for _, e := range especiesData {
		assert.False(t, seen[e.NomePopular], "nome popular repetido: %s", e.NomePopular)
		seen[e.NomePopular] = true

		assert.NotEmpty(t, e.NomeCientifico, e.NomePopular)
		assert.True(t, validPorte[e.Porte], "porte inválido em %s: %s", e.NomePopular, e.Porte)
		assert.LessOrEqual(t, e.AlturaMin, e.AlturaMax, e.NomePopular)
	}
}
