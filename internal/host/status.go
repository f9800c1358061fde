package host

import (
	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

// Status — снимок состояния хоста для admin API.
type Status struct {
	Identity    domain.PolicyIdentity   `json:"identity"`
	State       domain.LifecycleState   `json:"state"`
	Claim       domain.CapabilityClaim  `json:"claim"`
	Negotiation domain.NegotiationState `json:"negotiation"`
	LastWord    uint32                  `json:"last_word"`
	Events      []string                `json:"events"`
}

func (h *PolicyHost) Status() Status {
	kinds := h.events.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return Status{
		Identity:    h.id,
		State:       h.lifecycle.State(),
		Claim:       h.negotiator.Claim(),
		Negotiation: h.negotiator.State(),
		LastWord:    h.negotiator.LastWord(),
		Events:      names,
	}
}
