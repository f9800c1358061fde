package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/audit"
	"github.com/xela07ax/thermal-policy-host/internal/engine"
	"github.com/xela07ax/thermal-policy-host/internal/event"
	"github.com/xela07ax/thermal-policy-host/internal/infra"
	"github.com/xela07ax/thermal-policy-host/internal/infra/auth"
)

// PolicyManager описывает требования сервиса к менеджеру политик
type PolicyManager interface {
	Statuses() []engine.PolicyStatus
	Status(key string) (engine.PolicyStatus, error)
	SetEnabled(ctx context.Context, key string, enabled bool) error
	RegisterEvent(ctx context.Context, key string, k event.Kind) error
	UnregisterEvent(ctx context.Context, key string, k event.Kind) error
	ScheduleCallback(ctx context.Context, index uint, cb event.Callback) (engine.Result, error)
	Dispatch(ctx context.Context, n event.Notification) (engine.Report, error)
}

type PolicyService struct {
	manager PolicyManager
	rdb     redis.Cmdable  // может быть nil: тогда переключения не переживают рестарт
	journal audit.Recorder // может быть nil
	logger  *zap.Logger
}

func NewPolicyService(manager PolicyManager, rdb redis.Cmdable, journal audit.Recorder, logger *zap.Logger) *PolicyService {
	return &PolicyService{
		manager: manager,
		rdb:     rdb,
		journal: journal,
		logger:  logger.Named("policy-service"),
	}
}

func (s *PolicyService) List() []engine.PolicyStatus {
	return s.manager.Statuses()
}

func (s *PolicyService) Get(key string) (engine.PolicyStatus, error) {
	return s.manager.Status(key)
}

// SetEnabled переключает политику локально, затем сохраняет решение в Redis
// и транслирует сигнал остальным инстансам.
func (s *PolicyService) SetEnabled(ctx context.Context, key string, enabled bool) error {
	start := time.Now()
	err := s.manager.SetEnabled(ctx, key, enabled)
	s.recordControl(ctx, key, map[string]interface{}{"enabled": enabled}, start, err)
	if err != nil {
		return err
	}
	if s.rdb == nil {
		return nil
	}

	signal := "off"
	pipe := s.rdb.TxPipeline()
	if enabled {
		signal = "on"
		pipe.SRem(ctx, infra.RedisKeyDisabledPolicies, key)
	} else {
		pipe.SAdd(ctx, infra.RedisKeyDisabledPolicies, key)
	}
	pipe.Publish(ctx, infra.RedisChanPolicyControl, key+":"+signal)
	if _, err := pipe.Exec(ctx); err != nil {
		// Локально политика уже переключена; теряется только распространение
		s.logger.Error("failed to broadcast control signal", zap.String("policy", key), zap.Error(err))
		return fmt.Errorf("broadcast %s:%s: %w", key, signal, err)
	}
	return nil
}

// SetSubscription подписывает или отписывает политику от вида.
func (s *PolicyService) SetSubscription(ctx context.Context, key, kind string, subscribe bool) error {
	k, err := event.ParseKind(kind)
	if err != nil {
		return err
	}
	start := time.Now()
	if subscribe {
		err = s.manager.RegisterEvent(ctx, key, k)
	} else {
		err = s.manager.UnregisterEvent(ctx, key, k)
	}
	s.recordControl(ctx, key, map[string]interface{}{"kind": kind, "subscribe": subscribe}, start, err)
	return err
}

// Callback доставляет обратный вызов политике с указанным индексом.
func (s *PolicyService) Callback(ctx context.Context, index uint, cb event.Callback) (engine.Result, error) {
	return s.manager.ScheduleCallback(ctx, index, cb)
}

// Notify рассылает уведомление, пришедшее через admin API.
func (s *PolicyService) Notify(ctx context.Context, raw []byte) (engine.Report, error) {
	n, err := event.Decode(raw)
	if err != nil {
		return engine.Report{}, err
	}
	return s.manager.Dispatch(ctx, n)
}

func (s *PolicyService) recordControl(ctx context.Context, key string, detail map[string]interface{}, start time.Time, err error) {
	if s.journal == nil {
		return
	}
	e := audit.Entry{
		TraceID:    TraceID(ctx),
		Policy:     key,
		Category:   audit.CategoryControl,
		Action:     "admin",
		Detail:     detail,
		Status:     audit.StatusSuccess,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if c := auth.ClaimsFrom(ctx); c != nil {
		detail["operator"] = c.UserID
	}
	if err != nil {
		e.Status = audit.StatusFailed
		e.Error = err.Error()
	}
	s.journal.Record(e)
}
