// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/olegiv/lingocms/internal/store"
)

// EventResponse is an entry of the auth event log.
type EventResponse struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	AccountID string         `json:"account_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	Country   string         `json:"country,omitempty"`
	Browser   string         `json:"browser,omitempty"`
	OS        string         `json:"os,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func eventToResponse(e store.AuthEvent) EventResponse {
	resp := EventResponse{
		ID:        e.ID,
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		AccountID: e.AccountID.String,
		IPAddress: e.IpAddress,
		Country:   e.Country,
		Browser:   e.Browser,
		OS:        e.Os,
		CreatedAt: e.CreatedAt,
	}
	if e.Metadata != "" && e.Metadata != "{}" {
		_ = json.Unmarshal([]byte(e.Metadata), &resp.Metadata)
	}
	return resp
}

// ListEvents returns the auth event log, newest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page := parsePageParam(r)
	perPage := parsePerPageParam(r)

	events, total, err := h.events.List(r.Context(), int64(perPage), int64((page-1)*perPage))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data := make([]EventResponse, 0, len(events))
	for _, e := range events {
		data = append(data, eventToResponse(e))
	}
	WriteSuccess(w, data, pageMeta(total, page, perPage))
}
