package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных хоста в Redis
	RedisNamespace = "thermal"
)

// Ключи для Sets (состояние)
const (
	RedisKeyPlatformKinds    = RedisNamespace + ":platform:kinds"
	RedisKeyDisabledPolicies = RedisNamespace + ":policies:disabled_set"
	RedisKeyConfigDataPrefix = RedisNamespace + ":config:"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanNotifications входящие уведомления платформы (JSON-конверт).
	RedisChanNotifications = RedisNamespace + ":platform:notifications"
	// RedisChanSubscriptions хост сообщает платформе, какие виды начать/прекратить доставлять.
	RedisChanSubscriptions = RedisNamespace + ":platform:subscriptions"
	// RedisChanPolicyControl сигналы оператора "<policy>:on|off".
	RedisChanPolicyControl = RedisNamespace + ":policies:control"
)

// GetSyncLockKey Генератор ключей для блокировок синхронизации
func GetSyncLockKey(resource string) string {
	return fmt.Sprintf("%s:lock:sync:%s", RedisNamespace, resource)
}
