package policy

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

// BuiltinScheme префикс пути для in-process модулей: "builtin:critical".
const BuiltinScheme = "builtin:"

// Factory создаёт новый экземпляр модуля.
type Factory func() Module

// Loader открывает модуль по пути из определения политики.
type Loader interface {
	Open(path string) (Module, error)
}

type DefinitionRepository interface {
	ListDefinitions(ctx context.Context) ([]domain.PolicyDefinition, error)
}

// Registry in-process фабрики модулей плюс кэш определений политик.
// Определения приходят из конфига и, если задан repo, из PostgreSQL (Refresh).
type Registry struct {
	mu sync.RWMutex
	// Кэш: имя фабрики -> Factory
	factories map[string]Factory
	// Кэш: имя политики -> определение
	definitions map[string]domain.PolicyDefinition

	repo   DefinitionRepository
	logger *zap.Logger
}

func NewRegistry(repo DefinitionRepository, logger *zap.Logger) *Registry {
	return &Registry{
		factories:   make(map[string]Factory),
		definitions: make(map[string]domain.PolicyDefinition),
		repo:        repo,
		logger:      logger.Named("registry"),
	}
}

// Register добавляет фабрику. Повторное имя — ошибка.
func (r *Registry) Register(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("policy factory %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister Register для регистрации при старте.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Open создаёт модуль по пути "builtin:<name>" или просто "<name>".
func (r *Registry) Open(path string) (Module, error) {
	name := strings.TrimPrefix(path, BuiltinScheme)

	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no factory %q", domain.ErrPolicyNotFound, name)
	}
	return f(), nil
}

// Define добавляет или заменяет определения (из конфига).
func (r *Registry) Define(defs ...domain.PolicyDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range defs {
		r.definitions[d.Name] = d
	}
}

// Refresh подтягивает определения из PostgreSQL. Записи БД перекрывают конфиг с тем же именем.
func (r *Registry) Refresh(ctx context.Context) error {
	if r.repo == nil {
		return nil
	}
	defs, err := r.repo.ListDefinitions(ctx)
	if err != nil {
		return err
	}

	r.Define(defs...)
	r.logger.Info("policy definitions refreshed", zap.Int("count", len(defs)))
	return nil
}

// Definitions возвращает определения, отсортированные по имени.
func (r *Registry) Definitions() []domain.PolicyDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.PolicyDefinition, 0, len(r.definitions))
	for _, d := range r.definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
