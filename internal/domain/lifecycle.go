package domain

// LifecycleState — состояния конечного автомата политики.
type LifecycleState string

const (
	StateUnloaded  LifecycleState = "UNLOADED"
	StateCreated   LifecycleState = "CREATED"
	StateEnabled   LifecycleState = "ENABLED"
	StateDisabled  LifecycleState = "DISABLED"
	StateDestroyed LifecycleState = "DESTROYED"
)

// Transition — имя перехода (используется в логах, метриках и журнале).
type Transition string

const (
	TransitionCreate  Transition = "create"
	TransitionEnable  Transition = "enable"
	TransitionDisable Transition = "disable"
	TransitionDestroy Transition = "destroy"
)

// allowedFrom — из каких состояний разрешён переход.
// Destroy разрешён из любого "живого" состояния, включая Unloaded после неудачного create.
var allowedFrom = map[Transition][]LifecycleState{
	TransitionCreate:  {StateUnloaded},
	TransitionEnable:  {StateCreated, StateDisabled},
	TransitionDisable: {StateEnabled},
	TransitionDestroy: {StateUnloaded, StateCreated, StateEnabled, StateDisabled},
}

// CanTransition проверяет правила конечного автомата
func (s LifecycleState) CanTransition(t Transition) error {
	for _, from := range allowedFrom[t] {
		if from == s {
			return nil
		}
	}
	return &TransitionError{From: s, Transition: t}
}

// IsTerminal — после Destroyed инстанс больше не используется.
func (s LifecycleState) IsTerminal() bool {
	return s == StateDestroyed
}
