package event

// Outcome — результат обработки уведомления политикой.
type Outcome uint8

const (
	// OutcomeHandled — модуль обработал уведомление.
	OutcomeHandled Outcome = iota
	// OutcomeNotApplicable — у модуля нет обработчика для этого вида. Это не ошибка.
	OutcomeNotApplicable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHandled:
		return "handled"
	case OutcomeNotApplicable:
		return "not_applicable"
	default:
		return "unknown"
	}
}
