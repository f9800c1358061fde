package engine

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Subscriber — часть клиента Redis, нужная для подписки.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// ListenResilient — универсальный цикл для "живучей" подписки на канал Redis.
// Обрабатывает переподключения и логирование; разбор сообщения делает onMessage.
func ListenResilient(
	ctx context.Context,
	rdb Subscriber,
	logger *zap.Logger,
	channel string,
	onReconnect func() error, // Callback для синхронизации при переподключении
	onMessage func(payload string), // Callback для обработки сообщения
) {
	for {
		pubsub := rdb.Subscribe(ctx, channel)

		// Проверка успешности подписки
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to subscribe", zap.String("chan", channel), zap.Error(err))
			if !sleepCtx(ctx, 5*time.Second) {
				return
			}
			continue
		}

		// Вызываем синхронизацию при каждом успешном коннекте
		if onReconnect != nil {
			if err := onReconnect(); err != nil {
				logger.Error("sync failed on reconnect", zap.String("chan", channel), zap.Error(err))
			}
		}

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}
				onMessage(msg.Payload)
			}
		}

		pubsub.Close()
		if !sleepCtx(ctx, time.Second) {
			return
		}
	}
}

// ListenStateResilient — подписка на сигналы формата "id:status".
func ListenStateResilient(
	ctx context.Context,
	rdb Subscriber,
	logger *zap.Logger,
	channel string,
	onReconnect func() error,
	onMessage func(id string, status bool),
) {
	ListenResilient(ctx, rdb, logger, channel, onReconnect, func(payload string) {
		id, status, ok := ParseStateSignal(payload)
		if !ok {
			logger.Error("invalid signal format", zap.String("payload", payload))
			return
		}
		onMessage(id, status)
	})
}

// ParseStateSignal разбирает "id:status". Статус "true"/"on" — включено, остальное — выключено.
func ParseStateSignal(payload string) (string, bool, bool) {
	idx := strings.LastIndex(payload, ":")
	if idx <= 0 || idx == len(payload)-1 {
		return "", false, false
	}
	status := payload[idx+1:]
	return payload[:idx], status == "true" || status == "on", true
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
