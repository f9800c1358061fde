package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/event"
)

// Имена сервиса и методов. Тела запросов и ответов — google.protobuf.Struct.
const (
	HostServiceName = "dptf.policyhost.v1.PolicyHost"
	NotifyMethod    = "/" + HostServiceName + "/Notify"
	StatusMethod    = "/" + HostServiceName + "/Status"
)

// HostService — то, что gRPC-вход отдаёт наружу.
type HostService interface {
	Dispatch(ctx context.Context, n event.Notification) (Report, error)
	Statuses() []PolicyStatus
}

// GRPCHostServer принимает уведомления платформы напрямую, минуя Redis.
type GRPCHostServer struct {
	host HostService
}

func NewGRPCHostServer(host HostService) *GRPCHostServer {
	return &GRPCHostServer{host: host}
}

// Register вешает сервис на grpc.Server.
func (s *GRPCHostServer) Register(srv grpc.ServiceRegistrar) {
	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: HostServiceName,
		HandlerType: (*HostService)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Notify", Handler: s.unary(NotifyMethod, s.Notify)},
			{MethodName: "Status", Handler: s.unary(StatusMethod, s.Status)},
		},
		Metadata: "dptf/policyhost/v1/policyhost.proto",
	}, s.host)
}

// Notify разбирает конверт и рассылает уведомление политикам.
func (s *GRPCHostServer) Notify(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// 1. Struct -> JSON-конверт (тот же формат, что и в Redis)
	raw, err := json.Marshal(req.AsMap())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad envelope: %v", err)
	}
	n, err := event.Decode(raw)
	if err != nil {
		return nil, toStatus(err)
	}

	// 2. Рассылаем
	report, err := s.host.Dispatch(ctx, n)
	if err != nil {
		return nil, toStatus(err)
	}

	// 3. Собираем ответ
	handled := make([]interface{}, 0)
	for _, name := range report.Handled() {
		handled = append(handled, name)
	}
	failed := make(map[string]interface{})
	for name, err := range report.Failed() {
		failed[name] = err.Error()
	}
	skipped := 0
	for _, r := range report.Results {
		if r.Skipped {
			skipped++
		}
	}
	return structpb.NewStruct(map[string]interface{}{
		"kind":    n.Kind.String(),
		"handled": handled,
		"failed":  failed,
		"skipped": skipped,
	})
}

// Status возвращает снимки всех политик.
func (s *GRPCHostServer) Status(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	raw, err := json.Marshal(s.host.Statuses())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal status: %v", err)
	}
	var policies []interface{}
	if err := json.Unmarshal(raw, &policies); err != nil {
		return nil, status.Errorf(codes.Internal, "unmarshal status: %v", err)
	}
	return structpb.NewStruct(map[string]interface{}{"policies": policies})
}

func (s *GRPCHostServer) unary(
	fullMethod string,
	fn func(context.Context, *structpb.Struct) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(_ interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := &structpb.Struct{}
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: s, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return fn(ctx, req.(*structpb.Struct))
		})
	}
}

// grpcCode переводит доменные ошибки в коды gRPC.
func grpcCode(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrPolicyNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrUnknownKind), errors.Is(err, domain.ErrPayloadMismatch):
		return codes.InvalidArgument
	case errors.As(err, new(*json.SyntaxError)):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrPolicyDisabled):
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// toStatus оборачивает ошибку в gRPC status, сохраняя текст.
func toStatus(err error) error {
	return status.Error(grpcCode(err), fmt.Sprint(err))
}
