package audit

import "time"

// Категории записей журнала.
const (
	CategoryTransition  = "transition"
	CategoryDispatch    = "dispatch"
	CategoryNegotiation = "negotiation"
	CategoryControl     = "control"
)

// Статусы записей журнала.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusSkipped = "SKIPPED"
)

type Entry struct {
	ID          string `json:"id"`       // UUID записи
	TraceID     string `json:"trace_id"` // Сквозной ID запроса admin API, если есть
	Policy      string `json:"policy"`
	PolicyIndex uint   `json:"policy_index"`

	Category string                 `json:"category"` // transition, dispatch, negotiation, control
	Action   string                 `json:"action"`   // имя перехода или вида уведомления
	Detail   map[string]interface{} `json:"detail"`

	// Результат
	Status     string    `json:"status"`
	Error      string    `json:"error"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
}
