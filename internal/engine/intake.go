package engine

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/event"
)

// Dispatcher — то, чему приём отдаёт разобранные уведомления.
type Dispatcher interface {
	Dispatch(ctx context.Context, n event.Notification) (Report, error)
	PlatformKinds() []event.Kind
}

// IntakeConfig — ключи Redis для приёма уведомлений платформы.
type IntakeConfig struct {
	Channel  string // канал с JSON-конвертами
	KindsKey string // множество видов, нужных хосту
	LockKey  string // блокировка синхронизации множества
}

// Intake принимает уведомления платформы из Redis Pub/Sub и рассылает их политикам.
type Intake struct {
	rdb        redis.Cmdable
	dispatcher Dispatcher
	cfg        IntakeConfig
	metrics    *Metrics
	logger     *zap.Logger
}

func NewIntake(rdb redis.Cmdable, dispatcher Dispatcher, cfg IntakeConfig, metrics *Metrics, logger *zap.Logger) *Intake {
	return &Intake{
		rdb:        rdb,
		dispatcher: dispatcher,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger.Named("intake"),
	}
}

// Run блокируется до отмены ctx. При каждом переподключении множество видов в Redis
// перезаписывается текущими подписками хоста.
func (in *Intake) Run(ctx context.Context, sub Subscriber) {
	in.logger.Info("notification intake started", zap.String("chan", in.cfg.Channel))
	ListenResilient(ctx, sub, in.logger, in.cfg.Channel,
		func() error { return in.Sync(ctx) },
		func(payload string) { in.Handle(ctx, []byte(payload)) },
	)
	in.logger.Info("notification intake stopped")
}

// Sync выгружает текущие подписки платформы в Redis.
func (in *Intake) Sync(ctx context.Context) error {
	kinds := in.dispatcher.PlatformKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return SyncState(ctx, in.rdb, in.logger, names, in.cfg.KindsKey, in.cfg.LockKey)
}

// Handle разбирает один конверт и рассылает его. Битый конверт логируется и отбрасывается.
func (in *Intake) Handle(ctx context.Context, raw []byte) {
	n, err := event.Decode(raw)
	if err != nil {
		in.logger.Warn("dropping malformed notification", zap.ByteString("payload", raw), zap.Error(err))
		if in.metrics != nil {
			in.metrics.ErrorTotal.WithLabelValues("decode").Inc()
		}
		return
	}

	report, err := in.dispatcher.Dispatch(ctx, n)
	if err != nil {
		in.logger.Warn("notification rejected", zap.Stringer("kind", n.Kind), zap.Error(err))
		return
	}
	if failed := report.Failed(); len(failed) > 0 {
		in.logger.Debug("notification handled with failures",
			zap.Stringer("kind", n.Kind), zap.Int("failed", len(failed)))
	}
}
