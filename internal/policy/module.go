package policy

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/connectors"
	"github.com/xela07ax/thermal-policy-host/internal/domain"
	"github.com/xela07ax/thermal-policy-host/internal/event"
)

// Info то, что модуль сообщает о себе при загрузке.
type Info struct {
	GUID uuid.UUID
	Name string
	// Catalogue semver-ограничение на версию каталога уведомлений, например "^1.2".
	// Пустая строка — любая версия.
	Catalogue string
}

// ConfigData доступ к конфигурационным данным платформы. Обязательный сервис.
type ConfigData interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

// Services сервисы, которые хост передаёт модулю при создании.
type Services struct {
	ConfigData ConfigData
	Requests   connectors.Channel
	Logger     *zap.Logger
}

// Module загружаемая политика. Хост вызывает методы строго последовательно.
type Module interface {
	Info() Info

	OnCreate(ctx context.Context, svc Services) error
	OnDestroy(ctx context.Context) error
	OnEnable(ctx context.Context) error
	OnDisable(ctx context.Context) error

	HasActiveControlCapability() bool
	HasPassiveControlCapability() bool
	HasCriticalShutdownCapability() bool

	// Handle обрабатывает уведомление. Нет обработчика — OutcomeNotApplicable без ошибки.
	Handle(ctx context.Context, n event.Notification) (event.Outcome, error)
}

// CheckCatalogue сверяет ограничение модуля с версией каталога хоста.
func CheckCatalogue(info Info) error {
	if info.Catalogue == "" {
		return nil
	}
	c, err := semver.NewConstraint(info.Catalogue)
	if err != nil {
		return fmt.Errorf("%w: policy %s: bad constraint %q: %v", domain.ErrIncompatibleCatalogue, info.Name, info.Catalogue, err)
	}
	v := semver.MustParse(event.CatalogueVersion)
	if !c.Check(v) {
		return fmt.Errorf("%w: policy %s wants %s, host has %s", domain.ErrIncompatibleCatalogue, info.Name, info.Catalogue, event.CatalogueVersion)
	}
	return nil
}

// StaticConfig ConfigData из памяти (режим loopback и тесты).
type StaticConfig map[string][]byte

func (s StaticConfig) Read(_ context.Context, key string) ([]byte, error) {
	v, ok := s[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigDataNotFound, key)
	}
	return v, nil
}
