package engine

import (
	"github.com/xela07ax/thermal-policy-host/internal/event"
)

// Result — итог доставки одного уведомления одной политике.
type Result struct {
	Policy  string        `json:"policy"`
	Outcome event.Outcome `json:"-"`
	Skipped bool          `json:"skipped,omitempty"` // политика не включена
	Err     error         `json:"-"`
}

// Report — итог рассылки уведомления.
type Report struct {
	Kind    event.Kind
	Results []Result
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

// Handled — политики, обработавшие уведомление без ошибки.
func (r Report) Handled() []string {
	var out []string
	for _, res := range r.Results {
		if !res.Skipped && res.Err == nil && res.Outcome == event.OutcomeHandled {
			out = append(out, res.Policy)
		}
	}
	return out
}

// Failed — ошибки по политикам.
func (r Report) Failed() map[string]error {
	out := make(map[string]error)
	for _, res := range r.Results {
		if res.Err != nil {
			out[res.Policy] = res.Err
		}
	}
	return out
}
