package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/negotiation"
	"github.com/xela07ax/thermal-policy-host/internal/policy"
)

// Observer получает каждый завершённый переход (метрики, журнал).
type Observer interface {
	ObserveTransition(id domain.PolicyIdentity, t domain.Transition, from, to domain.LifecycleState, err error)
}

// PolicyLifecycle — конечный автомат одной политики. Единственный владелец её состояния.
// Блокировок нет: доступ сериализует менеджер.
type PolicyLifecycle struct {
	id         domain.PolicyIdentity
	module     policy.Module
	negotiator *negotiation.Negotiator
	prefs      policy.Preferences
	observer   Observer
	logger     *zap.Logger

	state domain.LifecycleState
}

func New(id domain.PolicyIdentity, module policy.Module, negotiator *negotiation.Negotiator, observer Observer, logger *zap.Logger) *PolicyLifecycle {
	return &PolicyLifecycle{
		id:         id,
		module:     module,
		negotiator: negotiator,
		prefs:      policy.PreferencesOf(module),
		observer:   observer,
		logger:     logger.Named("lifecycle"),
		state:      domain.StateUnloaded,
	}
}

func (l *PolicyLifecycle) State() domain.LifecycleState {
	return l.state
}

// Preferences — настройки авто-переговоров модуля.
func (l *PolicyLifecycle) Preferences() policy.Preferences {
	return l.prefs
}

// Enabled — политика принимает уведомления.
func (l *PolicyLifecycle) Enabled() bool {
	return l.state == domain.StateEnabled
}

// AssertEnabled возвращает ErrPolicyDisabled, если политика не включена.
func (l *PolicyLifecycle) AssertEnabled() error {
	if l.state != domain.StateEnabled {
		return fmt.Errorf("policy %s: %w", l.id.Name, domain.ErrPolicyDisabled)
	}
	return nil
}

// Create: Unloaded -> Created (или Enabled при enabledAtStart).
func (l *PolicyLifecycle) Create(ctx context.Context, enabledAtStart bool, svc policy.Services) (err error) {
	if err := l.state.CanTransition(domain.TransitionCreate); err != nil {
		return err
	}
	from := l.state
	defer func() { l.observe(domain.TransitionCreate, from, err) }()

	// 1. Без доступа к конфигурационным данным политика работать не может
	if svc.ConfigData == nil {
		return fmt.Errorf("policy %s: %w", l.id.Name, domain.ErrMissingRequiredService)
	}

	// 2. Хук модуля. При ошибке отзываем разрешение на всякий случай и остаёмся в Unloaded
	if hookErr := l.module.OnCreate(ctx, svc); hookErr != nil {
		l.negotiator.Withdraw(ctx)
		return l.hookError(domain.TransitionCreate, hookErr)
	}

	// 3. Сразу включённая политика заявляет capability
	l.state = domain.StateCreated
	if enabledAtStart {
		l.state = domain.StateEnabled
		if l.prefs.OnCreateDestroy {
			l.negotiator.Grant(ctx)
		}
	}
	return nil
}

// Enable: Created|Disabled -> Enabled. Разрешение запрашивается до хука.
func (l *PolicyLifecycle) Enable(ctx context.Context) (err error) {
	if err := l.state.CanTransition(domain.TransitionEnable); err != nil {
		return err
	}
	from := l.state
	defer func() { l.observe(domain.TransitionEnable, from, err) }()

	if l.prefs.OnEnableDisable {
		l.negotiator.Grant(ctx)
	}

	if hookErr := l.module.OnEnable(ctx); hookErr != nil {
		if l.prefs.OnEnableDisable {
			l.negotiator.Withdraw(ctx)
		}
		return l.hookError(domain.TransitionEnable, hookErr)
	}

	l.state = domain.StateEnabled
	return nil
}

// Disable: Enabled -> Disabled. Отзыв и смена состояния выполняются даже при ошибке хука.
// Флаг разрешения снимается всегда, отзыв на платформе зависит от настроек модуля.
func (l *PolicyLifecycle) Disable(ctx context.Context) (err error) {
	if err := l.state.CanTransition(domain.TransitionDisable); err != nil {
		return err
	}
	from := l.state
	defer func() { l.observe(domain.TransitionDisable, from, err) }()

	hookErr := l.module.OnDisable(ctx)

	if l.prefs.OnEnableDisable {
		l.negotiator.Withdraw(ctx)
	}
	l.negotiator.ForceDisabled()
	l.state = domain.StateDisabled

	if hookErr != nil {
		return l.hookError(domain.TransitionDisable, hookErr)
	}
	return nil
}

// Destroy: любое живое состояние -> Destroyed.
// Из Unloaded (после неудачного Create) хук и переговоры пропускаются.
func (l *PolicyLifecycle) Destroy(ctx context.Context) (err error) {
	if err := l.state.CanTransition(domain.TransitionDestroy); err != nil {
		return err
	}
	from := l.state
	defer func() { l.observe(domain.TransitionDestroy, from, err) }()

	if l.state == domain.StateUnloaded {
		l.state = domain.StateDestroyed
		return nil
	}

	hookErr := l.module.OnDestroy(ctx)

	if l.prefs.OnCreateDestroy {
		l.negotiator.Withdraw(ctx)
	}
	l.negotiator.ForceDisabled()
	l.state = domain.StateDestroyed

	if hookErr != nil {
		return l.hookError(domain.TransitionDestroy, hookErr)
	}
	return nil
}

func (l *PolicyLifecycle) hookError(t domain.Transition, cause error) error {
	err := &domain.HookError{Policy: l.id.Name, Hook: t, Cause: cause}
	l.logger.Error("policy hook failed", zap.String("hook", string(t)), zap.Error(cause))
	return err
}

func (l *PolicyLifecycle) observe(t domain.Transition, from domain.LifecycleState, err error) {
	if err == nil {
		l.logger.Info("policy transition", zap.String("transition", string(t)),
			zap.String("from", string(from)), zap.String("to", string(l.state)))
	}
	if l.observer != nil {
		l.observer.ObserveTransition(l.id, t, from, l.state, err)
	}
}
