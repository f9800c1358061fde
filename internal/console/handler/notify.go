package handler

import (
	"io"
	"net/http"

	"github.com/xela07ax/thermal-policy-host/internal/console/service"
)

const maxEnvelopeSize = 64 << 10

type NotifyHandler struct {
	service *service.PolicyService
}

func NewNotifyHandler(s *service.PolicyService) *NotifyHandler {
	return &NotifyHandler{service: s}
}

type dispatchResponse struct {
	Kind    string            `json:"kind"`
	Handled []string          `json:"handled"`
	Skipped []string          `json:"skipped"`
	Failed  map[string]string `json:"failed"`
}

// Notify рассылает уведомление в формате JSON-конверта.
// POST /v1/notifications
func (h *NotifyHandler) Notify(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEnvelopeSize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report, err := h.service.Notify(r.Context(), raw)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := dispatchResponse{
		Kind:    report.Kind.String(),
		Handled: report.Handled(),
		Skipped: []string{},
		Failed:  map[string]string{},
	}
	if resp.Handled == nil {
		resp.Handled = []string{}
	}
	for _, res := range report.Results {
		if res.Skipped {
			resp.Skipped = append(resp.Skipped, res.Policy)
		}
	}
	for name, err := range report.Failed() {
		resp.Failed[name] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
