package handler

import (
	"net/http"
	"strconv"

	"github.com/xela07ax/thermal-policy-host/internal/console/service"
	"github.com/xela07ax/thermal-policy-host/internal/repository/postgres"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(s *service.AuditService) *AuditHandler {
	return &AuditHandler{service: s}
}

// GetLogs возвращает записи журнала с поддержкой фильтрации
// GET /v1/audit?policy=...&category=...&limit=...
func (h *AuditHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	// Извлекаем фильтры из Query-параметров
	q := r.URL.Query()
	f := postgres.EntryFilter{Policy: q.Get("policy"), Category: q.Get("category")}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		f.Limit = n
	}

	logs, err := h.service.FetchLogs(r.Context(), f)
	if err != nil {
		http.Error(w, "Failed to fetch audit logs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// GetSummary сводка журнала за последний час
// GET /v1/dashboard/summary
func (h *AuditHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context())
	if err != nil {
		http.Error(w, "Failed to build summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
