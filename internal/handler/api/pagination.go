// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
)

// Pagination defaults for list endpoints.
const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// parsePageParam parses the "page" query parameter, defaulting to 1.
func parsePageParam(r *http.Request) int {
	return parseIntParam(r, "page", 1, 1, 0)
}

// parsePerPageParam parses the "per_page" query parameter.
func parsePerPageParam(r *http.Request) int {
	return parseIntParam(r, "per_page", defaultPerPage, 1, maxPerPage)
}

// parseIntParam parses an integer query parameter. Missing, invalid or
// out of range values yield defaultVal. A zero bound is not checked.
func parseIntParam(r *http.Request, name string, defaultVal, minVal, maxVal int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	if minVal > 0 && v < minVal {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return defaultVal
	}
	return v
}

// pageMeta builds list metadata.
func pageMeta(total int64, page, perPage int) *Meta {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return &Meta{Total: total, Page: page, PerPage: perPage, Pages: pages}
}
