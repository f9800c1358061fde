// Package builtin содержит политики, собранные в сам хост.
package builtin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/event"
	"github.com/xela07ax/thermal-policy-host/internal/policy"
)

// Register добавляет встроенные политики в реестр.
func Register(r *policy.Registry) {
	r.MustRegister("critical", func() policy.Module { return NewCritical() })
	r.MustRegister("passive", func() policy.Module { return NewPassive() })
}

// Critical заявляет только аварийное выключение и следит за порогами температуры.
type Critical struct {
	policy.Base
	logger *zap.Logger
}

func NewCritical() *Critical {
	c := &Critical{logger: zap.NewNop()}
	c.On(event.KindDomainTemperatureThresholdCrossed, c.onThreshold)
	c.On(event.KindPolicyOperatingSystemPowerSourceChanged, c.onPowerSource)
	return c
}

func (c *Critical) Info() policy.Info {
	return policy.Info{
		GUID:      uuid.MustParse("e78377ba-d2cd-4f8c-9a1e-4ad2c3a86b4d"),
		Name:      "Critical Policy",
		Catalogue: "^1.0",
	}
}

func (c *Critical) OnCreate(_ context.Context, svc policy.Services) error {
	if svc.Logger != nil {
		c.logger = svc.Logger
	}
	return nil
}

func (c *Critical) HasCriticalShutdownCapability() bool { return true }

func (c *Critical) onThreshold(_ context.Context, n event.Notification) error {
	p := n.Payload.(event.Participant)
	c.logger.Info("threshold crossed, re-arming trip points", zap.Uint("participant", p.Participant))
	return nil
}

func (c *Critical) onPowerSource(_ context.Context, n event.Notification) error {
	c.logger.Info("power source changed", zap.String("source", event.ValueName(n.Kind, n.Payload.(event.Enum).Value)))
	return nil
}

// Passive заявляет пассивное управление; активное появляется, когда платформа отдаёт PID-таблицу.
type Passive struct {
	policy.Base
	config policy.ConfigData
	active bool
	table  []byte
}

// Ключи конфигурационных данных платформы.
const (
	passiveTableKey = "passive/trt"
	pidTableKey     = "passive/pida"
)

func NewPassive() *Passive {
	p := &Passive{}
	p.On(event.KindPolicyThermalRelationshipTableChanged, p.reloadTable)
	p.On(event.KindPolicyPassiveTableChanged, p.reloadTable)
	p.On(event.KindPolicyPidAlgorithmTableChanged, p.reloadPid)
	return p
}

func (p *Passive) Info() policy.Info {
	return policy.Info{
		GUID:      uuid.MustParse("42a441d6-ae6a-462b-a84b-4a8ce79027cf"),
		Name:      "Passive Policy",
		Catalogue: ">=1.2, <2",
	}
}

func (p *Passive) OnCreate(ctx context.Context, svc policy.Services) error {
	p.config = svc.ConfigData
	// Таблицы может ещё не быть: дождёмся уведомления
	table, err := p.config.Read(ctx, passiveTableKey)
	if err != nil && !errors.Is(err, domain.ErrConfigDataNotFound) {
		return err
	}
	p.table = table
	return nil
}

func (p *Passive) AutoNotify() policy.Preferences {
	return policy.Preferences{OnCreateDestroy: true, OnEnableDisable: true, OnConnectedStandby: true}
}

func (p *Passive) HasPassiveControlCapability() bool { return true }
func (p *Passive) HasActiveControlCapability() bool  { return p.active }

func (p *Passive) reloadTable(ctx context.Context, _ event.Notification) error {
	table, err := p.config.Read(ctx, passiveTableKey)
	if err != nil {
		return err
	}
	p.table = table
	return nil
}

func (p *Passive) reloadPid(ctx context.Context, _ event.Notification) error {
	pid, err := p.config.Read(ctx, pidTableKey)
	if errors.Is(err, domain.ErrConfigDataNotFound) {
		p.active = false
		return nil
	}
	if err != nil {
		return err
	}
	p.active = len(pid) > 0
	return nil
}
