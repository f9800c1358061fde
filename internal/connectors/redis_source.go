package connectors

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/event"
)

// RedisSource сообщает платформе через Redis, какие виды уведомлений нужны хосту.
// Текущий набор лежит в множестве kindsKey, изменения публикуются в changesChan.
type RedisSource struct {
	rdb         redis.Cmdable
	kindsKey    string
	changesChan string
}

func NewRedisSource(rdb redis.Cmdable, kindsKey, changesChan string) *RedisSource {
	return &RedisSource{rdb: rdb, kindsKey: kindsKey, changesChan: changesChan}
}

func (s *RedisSource) Subscribe(ctx context.Context, k event.Kind) error {
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, s.kindsKey, k.String())
	pipe.Publish(ctx, s.changesChan, "subscribe:"+k.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", k, err)
	}
	return nil
}

func (s *RedisSource) Unsubscribe(ctx context.Context, k event.Kind) error {
	pipe := s.rdb.TxPipeline()
	pipe.SRem(ctx, s.kindsKey, k.String())
	pipe.Publish(ctx, s.changesChan, "unsubscribe:"+k.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis unsubscribe %s: %w", k, err)
	}
	return nil
}

// RedisConfigData читает конфигурационные данные платформы из строковых ключей prefix+key.
type RedisConfigData struct {
	rdb    redis.Cmdable
	prefix string
}

// ErrConfigDataNotFound ключа нет в Redis. Тот же sentinel, что у StaticConfig.
var ErrConfigDataNotFound = domain.ErrConfigDataNotFound

func NewRedisConfigData(rdb redis.Cmdable, prefix string) *RedisConfigData {
	return &RedisConfigData{rdb: rdb, prefix: prefix}
}

func (c *RedisConfigData) Read(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrConfigDataNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis read config %s: %w", key, err)
	}
	return b, nil
}
