package policy

import (
	"context"

	"github.com/xela07ax/thermal-policy-host/internal/event"
)

// HandlerFunc обрабатывает одно уведомление.
type HandlerFunc func(ctx context.Context, n event.Notification) error

// Base основа для модулей: пустые хуки, нулевые capability и таблица обработчиков.
// Модуль встраивает Base и переопределяет нужное.
type Base struct {
	handlers map[event.Kind]HandlerFunc
}

// On регистрирует обработчик вида. Повторный вызов заменяет обработчик.
func (b *Base) On(k event.Kind, h HandlerFunc) {
	if b.handlers == nil {
		b.handlers = make(map[event.Kind]HandlerFunc)
	}
	b.handlers[k] = h
}

// Handles есть ли обработчик для вида.
func (b *Base) Handles(k event.Kind) bool {
	_, ok := b.handlers[k]
	return ok
}

func (b *Base) Handle(ctx context.Context, n event.Notification) (event.Outcome, error) {
	h, ok := b.handlers[n.Kind]
	if !ok {
		return event.OutcomeNotApplicable, nil
	}
	return event.OutcomeHandled, h(ctx, n)
}

func (b *Base) OnCreate(context.Context, Services) error { return nil }
func (b *Base) OnDestroy(context.Context) error          { return nil }
func (b *Base) OnEnable(context.Context) error           { return nil }
func (b *Base) OnDisable(context.Context) error          { return nil }

func (b *Base) HasActiveControlCapability() bool    { return false }
func (b *Base) HasPassiveControlCapability() bool   { return false }
func (b *Base) HasCriticalShutdownCapability() bool { return false }
