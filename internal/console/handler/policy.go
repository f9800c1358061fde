package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xela07ax/thermal-policy-host/internal/console/service"
	"github.com/xela07ax/thermal-policy-host/internal/event"
)

type PolicyHandler struct {
	service *service.PolicyService
}

func NewPolicyHandler(s *service.PolicyService) *PolicyHandler {
	return &PolicyHandler{service: s}
}

// List возвращает снимки всех политик
// GET /v1/policies
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List())
}

// Get возвращает снимок конкретной политики.
// GET /v1/policies/{name}
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Enable POST /v1/policies/{name}/enable
func (h *PolicyHandler) Enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

// Disable POST /v1/policies/{name}/disable
func (h *PolicyHandler) Disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *PolicyHandler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	if err := h.service.SetEnabled(r.Context(), chi.URLParam(r, "name"), enabled); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Subscribe PUT /v1/policies/{name}/events/{kind}
func (h *PolicyHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	h.setSubscription(w, r, true)
}

// Unsubscribe DELETE /v1/policies/{name}/events/{kind}
func (h *PolicyHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.setSubscription(w, r, false)
}

func (h *PolicyHandler) setSubscription(w http.ResponseWriter, r *http.Request, subscribe bool) {
	err := h.service.SetSubscription(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "kind"), subscribe)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type callbackRequest struct {
	Code  uint64          `json:"code"`
	Param uint64          `json:"param"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Callback доставляет обратный вызов политике по индексу.
// POST /v1/policies/index/{index}/callback
func (h *PolicyHandler) Callback(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 32)
	if err != nil {
		http.Error(w, "index must be a non-negative integer", http.StatusBadRequest)
		return
	}
	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cb := event.Callback{Code: req.Code, Param: req.Param}
	if len(req.Data) > 0 {
		cb.Data = req.Data
	}
	res, err := h.service.Callback(r.Context(), uint(index), cb)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"policy": res.Policy, "outcome": res.Outcome.String()})
}
