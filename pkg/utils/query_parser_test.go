package utils

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilterFromQuery_Defaults(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{})
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 0, f.Offset)
	assert.False(t, f.WithPagination)
}

func TestParseFilterFromQuery_PageAndLimit(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{"page": {"3"}, "limit": {"20"}, "withPagination": {"true"}})
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 40, f.Offset)
	assert.True(t, f.WithPagination)

	f = ParseFilterFromQuery(url.Values{"limit": {"100000"}, "page": {"-2"}})
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
}

func TestParseFilterFromQuery_HugePageDoesNotOverflow(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{
		"page":  {strconv.Itoa(math.MaxInt)},
		"limit": {strconv.Itoa(MaxLimit)},
	})
	assert.Positive(t, f.Offset)
	assert.LessOrEqual(t, f.Offset, math.MaxInt32)
	assert.Equal(t, (f.Page-1)*f.Limit, f.Offset)
}

func TestParseFilterFromQuery_OffsetWinsOverPage(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{"page": {"5"}, "offset": {"30"}, "limit": {"10"}})
	assert.Equal(t, 30, f.Offset)
	assert.Equal(t, 4, f.Page)
}

func TestParseFilterFromQuery_FiltersAndSort(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{
		"search":         {"  ipê  "},
		"filter[status]": {"agendada,concluida"},
		"filter[bairro]": {"Centro"},
		"sort[numero]":   {"ASC"},
		"sort[id]":       {"qualquer"},
	})
	assert.Equal(t, "ipê", f.Search)
	assert.Equal(t, []string{"agendada", "concluida"}, f.Filter["status"])
	assert.Equal(t, "Centro", f.Filter["bairro"])
	assert.Equal(t, map[string]string{"numero": "asc", "id": "desc"}, f.Sort)
}
