package connectors

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// SubmitMethod unary-метод платформенного сервиса. Тело запроса и ответа — google.protobuf.Struct.
const SubmitMethod = "/dptf.platform.v1.Platform/SubmitRequest"

// throttleBackoff пауза, если платформа не прислала retry_after_ms.
const throttleBackoff = time.Second

type GRPCChannel struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

// NewGRPCChannel создает канал поверх готового соединения
func NewGRPCChannel(conn grpc.ClientConnInterface, timeout time.Duration) *GRPCChannel {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GRPCChannel{conn: conn, timeout: timeout}
}

// Submit реализует Channel
func (c *GRPCChannel) Submit(ctx context.Context, req Request) (Result, error) {
	// 1. Собираем Struct из запроса
	in, err := structpb.NewStruct(map[string]interface{}{
		"tag":          req.Tag,
		"policy_index": float64(req.Policy),
		"word":         float64(req.Word),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create proto struct: %w", err)
	}

	// 2. Свой предел на вызов, даже если выше стоит ReliableChannel
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// 3. Unary-вызов без сгенерированного клиента
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, SubmitMethod, in, out); err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.ResourceExhausted {
			return Result{}, &ThrottleError{RetryAfter: throttleBackoff, Cause: err}
		}
		return Result{}, fmt.Errorf("platform call failed: %w", err)
	}

	// 4. Проверяем статус внутри ответа
	fields := out.GetFields()
	msg := fields["message"].GetStringValue()
	if code := int(fields["status_code"].GetNumberValue()); code != 0 {
		if retry := fields["retry_after_ms"].GetNumberValue(); retry > 0 {
			return Result{}, &ThrottleError{
				RetryAfter: time.Duration(retry) * time.Millisecond,
				Cause:      fmt.Errorf("platform returned [%d]: %s", code, msg),
			}
		}
		return Result{}, fmt.Errorf("platform returned error [%d]: %s", code, msg)
	}

	return Result{Message: msg}, nil
}
