package engine

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SyncState — прогрев множества в Redis из локального состояния.
// Если ключ уже заполнен другим инстансом или чужая блокировка жива, ничего не делает.
func SyncState(
	ctx context.Context,
	rdb redis.Cmdable,
	logger *zap.Logger,
	ids []string,
	redisKey string,
	lockKey string,
) error {
	// 1. Распределенная блокировка (SetNX), чтобы только один инстанс обновлял Redis
	ok, err := rdb.SetNX(ctx, lockKey, "processing", 30*time.Second).Result()
	if err != nil {
		return err
	}
	if !ok {
		return nil // другой уже синхронизирует
	}
	defer rdb.Del(ctx, lockKey)

	// 2. Заменяем множество целиком: после рестарта платформа могла держать устаревший набор
	pipe := rdb.TxPipeline()
	pipe.Del(ctx, redisKey)
	for _, id := range ids {
		pipe.SAdd(ctx, redisKey, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	logger.Info("Redis state synchronized",
		zap.String("key", redisKey), zap.Int("count", len(ids)))
	return nil
}
