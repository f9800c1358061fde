package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/console/handler"
	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/infra/auth"
)

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger

	// Интерфейс для проверки токенов (RS256)
	authValidator auth.TokenValidator

	// Обработчики бизнес-доменов
	policyHandler *handler.PolicyHandler // /v1/policies
	notifyHandler *handler.NotifyHandler // /v1/notifications
	auditHandler  *handler.AuditHandler  // /v1/audit, /v1/dashboard (nil без базы)
	metrics       http.Handler           // /metrics (nil — не публикуем)
}

// NewConsoleServer инициализирует admin API со всеми зависимостями
func NewConsoleServer(
	logger *zap.Logger,
	validator auth.TokenValidator,
	policyH *handler.PolicyHandler,
	notifyH *handler.NotifyHandler,
	auditH *handler.AuditHandler,
	metrics http.Handler,
) *ConsoleServer {
	s := &ConsoleServer{
		router:        chi.NewRouter(),
		logger:        logger.Named("console-api"),
		authValidator: validator,
		policyHandler: policyH,
		notifyHandler: notifyH,
		auditHandler:  auditH,
		metrics:       metrics,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TracingMiddleware)
	r.Use(middleware.Recoverer)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ ---
	r.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		if s.metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.metrics)
		}
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (Требуют RS256 токен) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.authValidator, s.logger))

		// Управление Политиками
		r.Route("/v1/policies", func(r chi.Router) {
			r.With(auth.RequireScope(domain.ScopePolicyRead)).Get("/", s.policyHandler.List)
			r.With(auth.RequireScope(domain.ScopePolicyWrite)).
				Post("/index/{index}/callback", s.policyHandler.Callback)

			r.Route("/{name}", func(r chi.Router) {
				r.With(auth.RequireScope(domain.ScopePolicyRead)).Get("/", s.policyHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireScope(domain.ScopePolicyWrite))
					r.Post("/enable", s.policyHandler.Enable)
					r.Post("/disable", s.policyHandler.Disable)
					r.Put("/events/{kind}", s.policyHandler.Subscribe)
					r.Delete("/events/{kind}", s.policyHandler.Unsubscribe)
				})
			})
		})

		// Ручная доставка уведомлений (отладка, стенды)
		r.With(auth.RequireScope(domain.ScopeNotify)).Post("/v1/notifications", s.notifyHandler.Notify)

		// Аудит (Observability)
		if s.auditHandler != nil {
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireScope(domain.ScopePolicyRead))
				r.Get("/v1/audit", s.auditHandler.GetLogs)
				r.Get("/v1/dashboard/summary", s.auditHandler.GetSummary)
			})
		}
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
