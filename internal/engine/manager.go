package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/connectors"
	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/event"
	"github.com/xela07ax/thermal-policy-host/internal/host"
	"github.com/xela07ax/thermal-policy-host/internal/policy"
)

// NotificationSource — платформа, которая начинает или прекращает доставку вида.
type NotificationSource interface {
	Subscribe(ctx context.Context, k event.Kind) error
	Unsubscribe(ctx context.Context, k event.Kind) error
}

type ManagerConfig struct {
	Loader     policy.Loader
	Channel    connectors.Channel
	Source     NotificationSource
	ConfigData policy.ConfigData
	Observer   host.Observer
	Metrics    *Metrics
	Logger     *zap.Logger
}

type entry struct {
	key  string
	def  domain.PolicyDefinition
	host *host.PolicyHost
	reg  *host.Registrar
}

// PolicyManager владеет всеми хостами и единственный держит их Registrar.
// Один мьютекс сериализует любой доступ к хостам.
type PolicyManager struct {
	mu sync.Mutex

	entries   []*entry
	byKey     map[string]*entry
	nextIndex uint
	refs      map[event.Kind]int

	loader     policy.Loader
	channel    connectors.Channel
	source     NotificationSource
	configData policy.ConfigData
	observer   host.Observer
	metrics    *Metrics
	logger     *zap.Logger
}

func NewPolicyManager(cfg ManagerConfig) *PolicyManager {
	return &PolicyManager{
		byKey:      make(map[string]*entry),
		refs:       make(map[event.Kind]int),
		loader:     cfg.Loader,
		channel:    cfg.Channel,
		source:     cfg.Source,
		configData: cfg.ConfigData,
		observer:   cfg.Observer,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.Named("manager"),
	}
}

// Load открывает модуль, выдаёт индекс и подписывает политику на виды из определения.
// Политика остаётся в Unloaded до Create.
func (m *PolicyManager) Load(ctx context.Context, def domain.PolicyDefinition) (domain.PolicyIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byKey[def.Name]; ok {
		return domain.PolicyIdentity{}, fmt.Errorf("policy %q already loaded", def.Name)
	}

	kinds := make([]event.Kind, 0, len(def.Events))
	for _, name := range def.Events {
		k, err := event.ParseKind(name)
		if err != nil {
			return domain.PolicyIdentity{}, fmt.Errorf("policy %s: %w", def.Name, err)
		}
		kinds = append(kinds, k)
	}

	module, err := m.loader.Open(def.Path)
	if err != nil {
		return domain.PolicyIdentity{}, fmt.Errorf("policy %s: %w", def.Name, err)
	}

	h, reg, err := host.New(host.Config{
		Index:    m.nextIndex,
		Path:     def.Path,
		Module:   module,
		Channel:  m.channel,
		Observer: m.observer,
		Logger:   m.logger.With(zap.String("key", def.Name)),
	})
	if err != nil {
		return domain.PolicyIdentity{}, err
	}
	m.nextIndex++

	e := &entry{key: def.Name, def: def, host: h, reg: reg}
	m.entries = append(m.entries, e)
	m.byKey[def.Name] = e

	for _, k := range kinds {
		if err := m.registerLocked(ctx, e, k); err != nil {
			m.logger.Warn("platform subscription failed", zap.String("policy", def.Name), zap.Stringer("kind", k), zap.Error(err))
		}
	}

	m.logger.Info("policy loaded",
		zap.String("policy", def.Name),
		zap.Uint("policy_index", h.Identity().Index),
		zap.String("guid", h.Identity().GUID.String()),
		zap.String("path", def.Path),
	)
	return h.Identity(), nil
}

// Create создаёт загруженную политику. При ошибке политика разрушается и выгружается.
func (m *PolicyManager) Create(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookupLocked(key)
	if err != nil {
		return err
	}

	svc := policy.Services{ConfigData: m.configData, Requests: m.channel}
	if err := e.host.Create(ctx, e.def.EnabledAtStart, svc); err != nil {
		if derr := e.host.Destroy(ctx); derr != nil {
			m.logger.Error("destroy after failed create", zap.String("policy", key), zap.Error(derr))
		}
		m.unloadLocked(ctx, e)
		return err
	}
	return nil
}

// LoadAll загружает и создаёт политики по порядку. Ошибка одной не останавливает остальные.
func (m *PolicyManager) LoadAll(ctx context.Context, defs []domain.PolicyDefinition) error {
	var errs []error
	for _, def := range defs {
		if _, err := m.Load(ctx, def); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := m.Create(ctx, def.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *PolicyManager) Enable(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookupLocked(key)
	if err != nil {
		return err
	}
	return e.host.Enable(ctx)
}

func (m *PolicyManager) Disable(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookupLocked(key)
	if err != nil {
		return err
	}
	return e.host.Disable(ctx)
}

// SetEnabled приводит политику к нужному состоянию. Уже достигнутое состояние не ошибка.
func (m *PolicyManager) SetEnabled(ctx context.Context, key string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookupLocked(key)
	if err != nil {
		return err
	}
	state := e.host.State()
	switch {
	case enabled && state == domain.StateEnabled, !enabled && state != domain.StateEnabled:
		return nil
	case enabled:
		return e.host.Enable(ctx)
	default:
		return e.host.Disable(ctx)
	}
}

// Unload разрушает политику, снимает её подписки и удаляет из менеджера.
func (m *PolicyManager) Unload(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookupLocked(key)
	if err != nil {
		return err
	}
	err = e.host.Destroy(ctx)
	m.unloadLocked(ctx, e)
	return err
}

// Shutdown разрушает все политики в обратном порядке загрузки.
func (m *PolicyManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if err := e.host.Destroy(ctx); err != nil {
			errs = append(errs, err)
		}
		m.unloadLocked(ctx, e)
	}
	return errors.Join(errs...)
}

// RegisterEvent подписывает политику на вид. Платформа узнаёт о виде на первой подписке.
func (m *PolicyManager) RegisterEvent(ctx context.Context, key string, k event.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookupLocked(key)
	if err != nil {
		return err
	}
	return m.registerLocked(ctx, e, k)
}

// UnregisterEvent снимает подписку. Платформа прекращает доставку после последней отписки.
func (m *PolicyManager) UnregisterEvent(ctx context.Context, key string, k event.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookupLocked(key)
	if err != nil {
		return err
	}
	return m.unregisterLocked(ctx, e, k)
}

// PlatformKinds — виды, на которые сейчас подписана платформа.
func (m *PolicyManager) PlatformKinds() []event.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()

	kinds := make([]event.Kind, 0, len(m.refs))
	for k := range m.refs {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Dispatch рассылает уведомление подписанным политикам (события привязки получают все).
// Отключённая политика и отсутствие обработчика — штатная ситуация; ошибка одной политики не мешает остальным.
func (m *PolicyManager) Dispatch(ctx context.Context, n event.Notification) (Report, error) {
	if err := n.Validate(); err != nil {
		return Report{}, err
	}
	start := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	report := Report{Kind: n.Kind}
	for _, e := range m.entries {
		if !n.Kind.IsBinding() && !e.host.IsRegistered(n.Kind) {
			continue
		}
		report.add(m.deliverLocked(ctx, e, n))
	}

	if m.metrics != nil {
		m.metrics.DispatchDuration.WithLabelValues(n.Kind.String()).Observe(time.Since(start).Seconds())
	}
	return report, nil
}

// ScheduleCallback доставляет инициированный политикой обратный вызов одной политике по индексу.
func (m *PolicyManager) ScheduleCallback(ctx context.Context, index uint, cb event.Callback) (Result, error) {
	n, err := event.New(event.KindPolicyInitiatedCallback, cb)
	if err != nil {
		return Result{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.host.Identity().Index == index {
			res := m.deliverLocked(ctx, e, n)
			return res, res.Err
		}
	}
	return Result{}, fmt.Errorf("policy index %d: %w", index, domain.ErrPolicyNotFound)
}

// Status возвращает снимок одной политики.
func (m *PolicyManager) Status(key string) (PolicyStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookupLocked(key)
	if err != nil {
		return PolicyStatus{}, err
	}
	return PolicyStatus{Key: e.key, Status: e.host.Status()}, nil
}

// Statuses — снимки всех политик в порядке индексов.
func (m *PolicyManager) Statuses() []PolicyStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]PolicyStatus, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, PolicyStatus{Key: e.key, Status: e.host.Status()})
	}
	return out
}

// PolicyStatus — снимок хоста с ключом менеджера.
type PolicyStatus struct {
	Key string `json:"key"`
	host.Status
}

func (m *PolicyManager) deliverLocked(ctx context.Context, e *entry, n event.Notification) Result {
	outcome, err := e.host.Dispatch(ctx, n)
	switch {
	case errors.Is(err, domain.ErrPolicyDisabled):
		return Result{Policy: e.key, Skipped: true}
	case err != nil:
		m.logger.Error("policy failed to handle notification",
			zap.String("policy", e.key), zap.Stringer("kind", n.Kind), zap.Error(err))
		return Result{Policy: e.key, Outcome: outcome, Err: err}
	default:
		return Result{Policy: e.key, Outcome: outcome}
	}
}

func (m *PolicyManager) registerLocked(ctx context.Context, e *entry, k event.Kind) error {
	if !k.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrUnknownKind, uint16(k))
	}
	if e.host.IsRegistered(k) {
		return nil
	}
	if m.refs[k] == 0 && m.source != nil {
		if err := m.source.Subscribe(ctx, k); err != nil {
			if m.metrics != nil {
				m.metrics.ErrorTotal.WithLabelValues("source").Inc()
			}
			return fmt.Errorf("subscribe %s: %w", k, err)
		}
	}
	m.refs[k]++
	e.reg.Register(k)
	m.updateSubscriptionGauge()
	return nil
}

func (m *PolicyManager) unregisterLocked(ctx context.Context, e *entry, k event.Kind) error {
	if !e.host.IsRegistered(k) {
		return nil
	}
	e.reg.Unregister(k)
	m.refs[k]--
	if m.refs[k] > 0 {
		return nil
	}
	delete(m.refs, k)
	m.updateSubscriptionGauge()
	if m.source != nil {
		if err := m.source.Unsubscribe(ctx, k); err != nil {
			if m.metrics != nil {
				m.metrics.ErrorTotal.WithLabelValues("source").Inc()
			}
			return fmt.Errorf("unsubscribe %s: %w", k, err)
		}
	}
	return nil
}

func (m *PolicyManager) unloadLocked(ctx context.Context, e *entry) {
	for _, k := range e.host.RegisteredKinds() {
		if err := m.unregisterLocked(ctx, e, k); err != nil {
			m.logger.Warn("platform unsubscription failed", zap.String("policy", e.key), zap.Error(err))
		}
	}
	delete(m.byKey, e.key)
	for i, x := range m.entries {
		if x == e {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	m.logger.Info("policy unloaded", zap.String("policy", e.key))
}

func (m *PolicyManager) lookupLocked(key string) (*entry, error) {
	e, ok := m.byKey[key]
	if !ok {
		return nil, fmt.Errorf("policy %q: %w", key, domain.ErrPolicyNotFound)
	}
	return e, nil
}

func (m *PolicyManager) updateSubscriptionGauge() {
	if m.metrics != nil {
		m.metrics.PlatformSubscriptions.Set(float64(len(m.refs)))
	}
}
