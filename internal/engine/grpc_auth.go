package engine

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/infra/auth"
)

// methodScopes — право, нужное для каждого метода. Методы вне таблицы закрыты.
var methodScopes = map[string]string{
	NotifyMethod: domain.ScopeNotify,
	StatusMethod: domain.ScopePolicyRead,
}

// UnaryAuthInterceptor проверяет JWT в метаданных gRPC вызова
func UnaryAuthInterceptor(v auth.TokenValidator) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		// 1. Извлекаем метаданные из контекста
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Errorf(codes.Unauthenticated, "missing metadata")
		}

		// 2. Ищем токен (в gRPC заголовки обычно в нижнем регистре)
		tokens := md.Get("authorization")
		if len(tokens) == 0 {
			return nil, status.Errorf(codes.Unauthenticated, "missing access token")
		}

		claims, err := v.VerifyToken(tokens[0])
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid access token")
		}

		// 3. Проверяем право на метод
		scope, known := methodScopes[info.FullMethod]
		if !known || !claims.HasScope(scope) {
			return nil, status.Errorf(codes.PermissionDenied, "scope required for %s", info.FullMethod)
		}

		// Идем дальше по цепочке
		return handler(auth.WithClaims(ctx, claims), req)
	}
}
