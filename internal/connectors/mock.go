package connectors

import (
	"context"
	"sync"
)

// LoopbackChannel канал без платформы: запоминает запросы и отвечает успехом.
// Используется в режиме transport=loopback и в тестах.
type LoopbackChannel struct {
	mu       sync.Mutex
	requests []Request
	// Fail, если задан, решает, вернуть ли ошибку на конкретный запрос.
	Fail func(Request) error
	// Message возвращается в Result при успехе.
	Message string
}

func (c *LoopbackChannel) Submit(ctx context.Context, req Request) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	c.mu.Lock()
	c.requests = append(c.requests, req)
	fail := c.Fail
	c.mu.Unlock()

	if fail != nil {
		if err := fail(req); err != nil {
			return Result{}, err
		}
	}
	return Result{Message: c.Message}, nil
}

// Requests возвращает копию принятых запросов.
func (c *LoopbackChannel) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Request, len(c.requests))
	copy(out, c.requests)
	return out
}

// Words только capability words, по порядку.
func (c *LoopbackChannel) Words() []uint32 {
	reqs := c.Requests()
	words := make([]uint32, len(reqs))
	for i, r := range reqs {
		words[i] = r.Word
	}
	return words
}

// Reset забывает принятые запросы.
func (c *LoopbackChannel) Reset() {
	c.mu.Lock()
	c.requests = nil
	c.mu.Unlock()
}
