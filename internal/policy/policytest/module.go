// Package policytest содержит скриптуемый модуль политики для тестов хоста и менеджера.
package policytest

import (
	"context"

	"github.com/google/uuid"

	"github.com/xela07ax/thermal-policy-host/internal/event"
	"github.com/xela07ax/thermal-policy-host/internal/policy"
)

// Module записывает каждый вызов и возвращает заранее заданные ошибки хуков.
type Module struct {
	policy.Base

	Name      string
	GUID      uuid.UUID
	Catalogue string
	Prefs     policy.Preferences

	Active, Passive, Critical bool

	CreateErr, EnableErr, DisableErr, DestroyErr error

	Services policy.Services
	Calls    []string
}

func New(name string) *Module {
	return &Module{Name: name, GUID: uuid.New(), Prefs: policy.DefaultPreferences}
}

func (m *Module) Info() policy.Info {
	return policy.Info{GUID: m.GUID, Name: m.Name, Catalogue: m.Catalogue}
}

func (m *Module) AutoNotify() policy.Preferences { return m.Prefs }

func (m *Module) OnCreate(_ context.Context, svc policy.Services) error {
	m.Calls = append(m.Calls, "create")
	m.Services = svc
	return m.CreateErr
}

func (m *Module) OnDestroy(context.Context) error {
	m.Calls = append(m.Calls, "destroy")
	return m.DestroyErr
}

func (m *Module) OnEnable(context.Context) error {
	m.Calls = append(m.Calls, "enable")
	return m.EnableErr
}

func (m *Module) OnDisable(context.Context) error {
	m.Calls = append(m.Calls, "disable")
	return m.DisableErr
}

func (m *Module) HasActiveControlCapability() bool    { return m.Active }
func (m *Module) HasPassiveControlCapability() bool   { return m.Passive }
func (m *Module) HasCriticalShutdownCapability() bool { return m.Critical }

func (m *Module) Handle(ctx context.Context, n event.Notification) (event.Outcome, error) {
	m.Calls = append(m.Calls, "handle:"+n.Kind.String())
	return m.Base.Handle(ctx, n)
}

// Reset очищает журнал вызовов.
func (m *Module) Reset() {
	m.Calls = nil
}
