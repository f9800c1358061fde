package connectors

import (
	"fmt"
	"time"
)

// ThrottleError платформа попросила повторить позже (RESOURCE_EXHAUSTED).
type ThrottleError struct {
	RetryAfter time.Duration
	Cause      error
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("throttled: retry after %v (cause: %v)", e.RetryAfter, e.Cause)
}

func (e *ThrottleError) Unwrap() error {
	return e.Cause
}

// ChannelError запрос к платформе не прошёл. Наружу из переговорщика не выходит.
type ChannelError struct {
	Tag    string
	Policy uint
	Cause  error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("platform request %s for policy %d failed: %v", e.Tag, e.Policy, e.Cause)
}

func (e *ChannelError) Unwrap() error {
	return e.Cause
}
