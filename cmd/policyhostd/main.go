package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/xela07ax/thermal-policy-host/internal/audit"
	"github.com/xela07ax/thermal-policy-host/internal/connectors"
	"github.com/xela07ax/thermal-policy-host/internal/console/handler"
	"github.com/xela07ax/thermal-policy-host/internal/console/server"
	"github.com/xela07ax/thermal-policy-host/internal/console/service"
	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/engine"
	"github.com/xela07ax/thermal-policy-host/internal/infra"
	"github.com/xela07ax/thermal-policy-host/internal/infra/auth"
	"github.com/xela07ax/thermal-policy-host/internal/policy"
	"github.com/xela07ax/thermal-policy-host/internal/policy/builtin"
	"github.com/xela07ax/thermal-policy-host/internal/repository/postgres"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, v, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, v, logger); err != nil {
		logger.Fatal("policy host failed", zap.Error(err))
	}
}

func run(cfg *infra.Config, v *viper.Viper, logger *zap.Logger) error {
	// Контекст для управления жизненным циклом фоновых горутин.
	// SIGINT/SIGTERM отменяет его, слушатели Redis завершаются сами.
	appCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := engine.NewMetrics(reg)

	// 3. Инфраструктура: Redis и Postgres (оба опциональны)
	var (
		rdb    *redis.Client
		rdbCmd redis.Cmdable // nil, если Redis не настроен
	)
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(appCtx).Err(); err != nil {
			return fmt.Errorf("redis unreachable: %w", err)
		}
		rdbCmd = rdb
	}

	var (
		err         error
		journal     *audit.Journal
		journalRepo *postgres.JournalRepo
		defRepo     policy.DefinitionRepository
	)
	if cfg.Database.URL != "" {
		journalRepo, err = postgres.NewJournalRepo(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer journalRepo.Close()
		if err := journalRepo.Ping(appCtx); err != nil {
			return fmt.Errorf("database unreachable: %w", err)
		}
		// Теперь записи журнала полетят в базу пачками
		journal = audit.NewJournal(journalRepo, metrics.JournalBufferFill, logger)
		journal.Start()
		defer journal.Stop()

		if cfg.Database.LoadCatalogue {
			repo, pool, err := postgres.NewPolicyRepo(appCtx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer pool.Close()
			defRepo = repo
		}
	}

	// 4. Канал к платформе + надежность (Retries, Circuit Breaker, Rate Limit)
	var channel connectors.Channel = &connectors.LoopbackChannel{}
	if cfg.Negotiation.Transport == "grpc" {
		conn, err := grpc.NewClient(cfg.Negotiation.Target, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("platform connection: %w", err)
		}
		defer conn.Close()
		channel = connectors.NewGRPCChannel(conn, cfg.Negotiation.Timeout)
	}
	channel = engine.NewReliableChannel(channel, engine.ReliabilityConfig{
		Name:              cfg.Negotiation.Transport,
		RateLimit:         cfg.Negotiation.RateLimit,
		Burst:             cfg.Negotiation.Burst,
		Attempts:          cfg.Negotiation.Attempts,
		AttemptTimeout:    cfg.Negotiation.Timeout,
		BreakerInterval:   cfg.Negotiation.CBInterval,
		BreakerTimeout:    cfg.Negotiation.CBTimeout,
		BreakerMaxFailure: cfg.Negotiation.CBMaxFailures,
	}, metrics, logger)

	// 5. Загрузчики модулей и каталог определений
	registry := policy.NewRegistry(defRepo, logger)
	builtin.Register(registry)
	registry.Define(cfg.Policies...)
	if err := registry.Refresh(appCtx); err != nil {
		return fmt.Errorf("policy catalogue: %w", err)
	}
	loader := policy.PathLoader{Builtin: registry}
	if cfg.Engine.PluginsEnabled {
		loader.Plugins = policy.PluginLoader{}
	}

	// 6. Ядро: менеджер политик
	var journalRecorder audit.Recorder
	if journal != nil {
		journalRecorder = journal
	}
	mcfg := engine.ManagerConfig{
		Loader:     loader,
		Channel:    channel,
		ConfigData: policy.StaticConfig{},
		Observer:   engine.NewObserver(metrics, journalRecorder),
		Metrics:    metrics,
		Logger:     logger,
	}
	if rdb != nil {
		mcfg.Source = connectors.NewRedisSource(rdb, infra.RedisKeyPlatformKinds, infra.RedisChanSubscriptions)
		mcfg.ConfigData = connectors.NewRedisConfigData(rdb, infra.RedisKeyConfigDataPrefix)
	}
	manager := engine.NewPolicyManager(mcfg)

	if err := manager.LoadAll(appCtx, registry.Definitions()); err != nil {
		// Сломанная политика не мешает остальным; она уже выгружена менеджером
		logger.Error("some policies failed to load", zap.Error(err))
	}

	// 7. Control Plane: сигналы оператора, уведомления платформы, правки конфига
	control := engine.NewControlListener(rdbCmd, manager, infra.RedisChanPolicyControl, infra.RedisKeyDisabledPolicies, logger)
	if rdb != nil {
		intake := engine.NewIntake(rdb, manager, engine.IntakeConfig{
			Channel:  infra.RedisChanNotifications,
			KindsKey: infra.RedisKeyPlatformKinds,
			LockKey:  infra.GetSyncLockKey("kinds"),
		}, metrics, logger)
		go intake.Run(appCtx, rdb)
		go control.Run(appCtx, rdb)
	}
	if v.ConfigFileUsed() != "" {
		infra.WatchConfig(v, logger, func(next *infra.Config) {
			control.ApplyDefinitions(appCtx, next.Policies)
		})
	}

	// 8. Admin API
	var validator auth.TokenValidator = denyAll{}
	if len(cfg.Auth.PublicKey) > 0 {
		pub, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
		if err != nil {
			return err
		}
		validator = auth.NewBaseValidator(pub)
	} else {
		logger.Warn("auth public key is not configured, admin API will reject every token")
	}

	policySvc := service.NewPolicyService(manager, rdbCmd, journalRecorder, logger)
	var auditH *handler.AuditHandler
	if journalRepo != nil {
		auditH = handler.NewAuditHandler(service.NewAuditService(journalRepo))
	}
	console := server.NewConsoleServer(logger, validator,
		handler.NewPolicyHandler(policySvc),
		handler.NewNotifyHandler(policySvc),
		auditH,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      console,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("admin API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("admin API: %w", err)
		}
	}()

	// 9. gRPC вход для платформы
	var grpcSrv *grpc.Server
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("failed to listen gRPC: %w", err)
		}
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(engine.UnaryAuthInterceptor(validator)))
		engine.NewGRPCHostServer(manager).Register(grpcSrv)
		go func() {
			logger.Info("gRPC server started", zap.String("addr", lis.Addr().String()))
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("gRPC: %w", err)
			}
		}()
	}

	// 10. Graceful Shutdown
	var runErr error
	select {
	case <-appCtx.Done():
		logger.Info("policy host stopping...")
	case runErr = <-errCh:
		logger.Error("server failed, stopping", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Engine.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin API shutdown failed", zap.Error(err))
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	// Разрушаем политики в обратном порядке; журнал допишется в defer
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("policy shutdown reported errors", zap.Error(err))
	}
	logger.Info("policy host exited properly")
	return runErr
}

// denyAll — валидатор на случай, когда ключ не настроен.
type denyAll struct{}

func (denyAll) VerifyToken(string) (*domain.OperatorClaims, error) {
	return nil, errors.New("token verification is not configured")
}
