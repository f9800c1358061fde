package engine

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

// Switch включает и выключает политики по ключу.
type Switch interface {
	SetEnabled(ctx context.Context, key string, enabled bool) error
}

// ControlListener применяет операторские сигналы "<policy>:on|off" из Redis.
// Множество disabledKey хранит политики, которые должны оставаться выключенными после рестарта.
type ControlListener struct {
	rdb         redis.Cmdable
	sw          Switch
	channel     string
	disabledKey string
	logger      *zap.Logger
}

func NewControlListener(rdb redis.Cmdable, sw Switch, channel, disabledKey string, logger *zap.Logger) *ControlListener {
	return &ControlListener{
		rdb:         rdb,
		sw:          sw,
		channel:     channel,
		disabledKey: disabledKey,
		logger:      logger.Named("control"),
	}
}

// Init выключает политики из множества disabledKey. Неизвестные ключи пропускаются.
func (c *ControlListener) Init(ctx context.Context) error {
	keys, err := c.rdb.SMembers(ctx, c.disabledKey).Result()
	if err != nil {
		return err
	}
	for _, key := range keys {
		c.Apply(ctx, key, false)
	}
	return nil
}

// Apply переключает одну политику и логирует результат.
func (c *ControlListener) Apply(ctx context.Context, key string, enabled bool) {
	err := c.sw.SetEnabled(ctx, key, enabled)
	switch {
	case errors.Is(err, domain.ErrPolicyNotFound):
		c.logger.Debug("control signal for unknown policy", zap.String("policy", key))
	case err != nil:
		c.logger.Error("control signal failed",
			zap.String("policy", key), zap.Bool("enabled", enabled), zap.Error(err))
	default:
		c.logger.Info("control signal applied", zap.String("policy", key), zap.Bool("enabled", enabled))
	}
}

// Run блокируется до отмены ctx.
func (c *ControlListener) Run(ctx context.Context, sub Subscriber) {
	ListenStateResilient(ctx, sub, c.logger, c.channel,
		func() error { return c.Init(ctx) },
		func(key string, enabled bool) { c.Apply(ctx, key, enabled) },
	)
}

// ApplyDefinitions приводит политики к enabled_at_start из перечитанного конфига.
func (c *ControlListener) ApplyDefinitions(ctx context.Context, defs []domain.PolicyDefinition) {
	for _, d := range defs {
		c.Apply(ctx, d.Name, d.EnabledAtStart)
	}
}
