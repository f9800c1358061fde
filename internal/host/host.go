package host

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/connectors"
	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/event"
	"github.com/xela07ax/thermal-policy-host/internal/lifecycle"
	"github.com/xela07ax/thermal-policy-host/internal/negotiation"
	"github.com/xela07ax/thermal-policy-host/internal/policy"
)

// Observer — метрики и журнал хоста.
type Observer interface {
	negotiation.Observer
	lifecycle.Observer
	ObserveDispatch(id domain.PolicyIdentity, kind event.Kind, outcome event.Outcome, err error)
}

type Config struct {
	Index    uint
	Path     string
	Module   policy.Module
	Channel  connectors.Channel
	Observer Observer
	Logger   *zap.Logger
}

// PolicyHost — обёртка одной загруженной политики: жизненный цикл, переговоры, подписки и диспетчер.
// Блокировок нет: менеджер сериализует все вызовы.
type PolicyHost struct {
	id         domain.PolicyIdentity
	module     policy.Module
	lifecycle  *lifecycle.PolicyLifecycle
	negotiator *negotiation.Negotiator
	observer   Observer
	logger     *zap.Logger

	// Меняется только через Registrar
	events event.Set
}

// Registrar — единственный способ изменить подписки хоста. Выдаётся только создателю хоста.
type Registrar struct {
	host *PolicyHost
}

func (r *Registrar) Register(k event.Kind) {
	r.host.events.Add(k)
}

func (r *Registrar) Unregister(k event.Kind) {
	r.host.events.Remove(k)
}

// New проверяет совместимость модуля и собирает хост.
func New(cfg Config) (*PolicyHost, *Registrar, error) {
	info := cfg.Module.Info()
	if err := policy.CheckCatalogue(info); err != nil {
		return nil, nil, err
	}

	id := domain.PolicyIdentity{
		Index: cfg.Index,
		GUID:  info.GUID,
		Name:  info.Name,
		Path:  cfg.Path,
	}
	logger := cfg.Logger.With(zap.String("policy", id.Name), zap.Uint("policy_index", id.Index))

	// Явный nil, чтобы не получить интерфейс с nil-указателем внутри
	var negObs negotiation.Observer
	var lcObs lifecycle.Observer
	if cfg.Observer != nil {
		negObs, lcObs = cfg.Observer, cfg.Observer
	}

	neg := negotiation.NewNegotiator(id, cfg.Module, cfg.Channel, negObs, logger)
	h := &PolicyHost{
		id:         id,
		module:     cfg.Module,
		negotiator: neg,
		lifecycle:  lifecycle.New(id, cfg.Module, neg, lcObs, logger),
		observer:   cfg.Observer,
		logger:     logger,
	}
	return h, &Registrar{host: h}, nil
}

func (h *PolicyHost) Identity() domain.PolicyIdentity {
	return h.id
}

func (h *PolicyHost) State() domain.LifecycleState {
	return h.lifecycle.State()
}

func (h *PolicyHost) IsRegistered(k event.Kind) bool {
	return h.events.Has(k)
}

func (h *PolicyHost) RegisteredKinds() []event.Kind {
	return h.events.Kinds()
}

func (h *PolicyHost) Create(ctx context.Context, enabledAtStart bool, svc policy.Services) error {
	if svc.Logger == nil {
		svc.Logger = h.logger.Named("module")
	}
	return h.lifecycle.Create(ctx, enabledAtStart, svc)
}

func (h *PolicyHost) Enable(ctx context.Context) error  { return h.lifecycle.Enable(ctx) }
func (h *PolicyHost) Disable(ctx context.Context) error { return h.lifecycle.Disable(ctx) }
func (h *PolicyHost) Destroy(ctx context.Context) error { return h.lifecycle.Destroy(ctx) }

// Dispatch доставляет уведомление модулю.
// Порядок: проверка нагрузки, enabled-guard, запись в лог, обработчик, перезаявка capability.
func (h *PolicyHost) Dispatch(ctx context.Context, n event.Notification) (outcome event.Outcome, err error) {
	if err := n.Validate(); err != nil {
		return event.OutcomeNotApplicable, err
	}
	if err := h.lifecycle.AssertEnabled(); err != nil {
		return event.OutcomeNotApplicable, err
	}
	defer func() {
		if h.observer != nil {
			h.observer.ObserveDispatch(h.id, n.Kind, outcome, err)
		}
	}()

	h.logger.Info(n.Message(), n.Fields()...)

	switch n.Kind {
	case event.KindConnectedStandbyEntry:
		return h.connectedStandbyEntry(ctx, n)
	case event.KindConnectedStandbyExit:
		return h.connectedStandbyExit(ctx, n)
	}

	var before domain.CapabilityClaim
	if n.Kind.Reconciles() {
		before = h.negotiator.Claim()
	}

	outcome, err = h.module.Handle(ctx, n)
	if err != nil {
		return outcome, h.handlerError(n.Kind, err)
	}

	if n.Kind.Reconciles() {
		// Перезаявка идёт по той же настройке, что и разрешение при создании
		autoNotify := h.lifecycle.Enabled() && h.lifecycle.Preferences().OnCreateDestroy
		h.negotiator.ReconcileIfChanged(ctx, before, autoNotify)
	}
	return outcome, nil
}

// Вход в connected standby: разрешение до обработчика, отзыв при ошибке.
func (h *PolicyHost) connectedStandbyEntry(ctx context.Context, n event.Notification) (event.Outcome, error) {
	notify := h.lifecycle.Preferences().OnConnectedStandby
	if notify {
		h.negotiator.Grant(ctx)
	}
	outcome, err := h.module.Handle(ctx, n)
	if err != nil {
		if notify {
			h.negotiator.Withdraw(ctx)
		}
		return outcome, h.handlerError(n.Kind, err)
	}
	return outcome, nil
}

// Выход из connected standby: обработчик, затем отзыв в любом случае.
func (h *PolicyHost) connectedStandbyExit(ctx context.Context, n event.Notification) (event.Outcome, error) {
	outcome, err := h.module.Handle(ctx, n)
	if h.lifecycle.Preferences().OnConnectedStandby {
		h.negotiator.Withdraw(ctx)
	}
	if err != nil {
		return outcome, h.handlerError(n.Kind, err)
	}
	return outcome, nil
}

func (h *PolicyHost) handlerError(k event.Kind, err error) error {
	h.logger.Error("notification handler failed", zap.Stringer("kind", k), zap.Error(err))
	return fmt.Errorf("policy %s: handle %s: %w", h.id.Name, k, err)
}
