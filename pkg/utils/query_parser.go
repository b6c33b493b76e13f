package utils

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"semapa/pkg/types"
)

const (
	DefaultLimit = 10
	MaxLimit     = 500
)

// ParseFilterFromQuery reads limit, page, offset, search, sort[...] and filter[...] parameters.
func ParseFilterFromQuery(query url.Values) types.Filter {
	filter := types.Filter{
		Sort:   make(map[string]string),
		Filter: make(map[string]interface{}),
		Limit:  DefaultLimit,
		Page:   1,
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}

	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filter.Page = p
		}
	}
	if maxPage := math.MaxInt32 / filter.Limit; filter.Page > maxPage {
		filter.Page = maxPage
	}
	filter.Offset = (filter.Page - 1) * filter.Limit

	// offset takes priority over page when both are given
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
			filter.Page = o/filter.Limit + 1
		}
	}

	filter.Search = strings.TrimSpace(query.Get("search"))
	filter.WithPagination = query.Get("withPagination") == "true"

	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]"):
			name := key[7 : len(key)-1]
			if strings.Contains(values[0], ",") {
				filter.Filter[name] = strings.Split(values[0], ",")
			} else {
				filter.Filter[name] = values[0]
			}
		case strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]"):
			direction := strings.ToLower(values[0])
			if direction != "asc" {
				direction = "desc"
			}
			filter.Sort[key[5:len(key)-1]] = direction
		}
	}

	return filter
}
