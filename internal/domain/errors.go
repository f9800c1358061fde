package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequiredService = errors.New("policy services do not provide a platform configuration data accessor")
	ErrPolicyDisabled         = errors.New("the policy has been disabled")
	ErrInvalidTransition      = errors.New("invalid lifecycle transition")
	ErrUnknownKind            = errors.New("unknown notification kind")
	ErrPayloadMismatch        = errors.New("payload does not match notification kind")
	ErrPolicyNotFound         = errors.New("policy not found")
	ErrIncompatibleCatalogue  = errors.New("policy is built against an incompatible notification catalogue")
	ErrConfigDataNotFound     = errors.New("config data not found")
)

// TransitionError — переход запрещён из текущего состояния.
type TransitionError struct {
	From       LifecycleState
	Transition Transition
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s policy in state %s", e.Transition, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// HookError оборачивает ошибку, выброшенную хуком модуля (onCreate/onEnable/...).
type HookError struct {
	Policy string
	Hook   Transition
	Cause  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("policy %s: %s hook failed: %v", e.Policy, e.Hook, e.Cause)
}

func (e *HookError) Unwrap() error {
	return e.Cause
}
