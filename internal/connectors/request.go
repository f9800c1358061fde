package connectors

import "context"

// TagSetOsc тег запроса, которым политика заявляет capability word платформе.
const TagSetOsc = "PlatformNotificationSetOsc"

// Request запрос политики к платформе.
type Request struct {
	Tag    string
	Policy uint
	Word   uint32
}

// Result ответ платформы. Message только для журнала: успех определяет отсутствие ошибки.
type Result struct {
	Message string
}

// Channel канал запросов к платформе.
type Channel interface {
	Submit(ctx context.Context, req Request) (Result, error)
}
