package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

// EnvPrefix префикс переменных окружения: POLICYHOST_SERVER_PORT перекроет server.port.
const EnvPrefix = "POLICYHOST"

// Config корневая структура конфигурации хоста политик.
type Config struct {
	Server      ServerConfig              `mapstructure:"server"`
	Database    DatabaseConfig            `mapstructure:"database"`
	Redis       RedisConfig               `mapstructure:"redis"`
	Auth        AuthConfig                `mapstructure:"auth"`
	Engine      EngineConfig              `mapstructure:"engine"`
	Negotiation NegotiationConfig         `mapstructure:"negotiation"`
	Logger      LoggerConfig              `mapstructure:"logger"`
	Policies    []domain.PolicyDefinition `mapstructure:"policies"`
}

// ServerConfig описывает admin API и gRPC вход.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	GRPCPort     int           `mapstructure:"grpc_port"` // 0 — gRPC вход выключен
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig описывает подключение к PostgreSQL. Пустой URL — журнал и каталог в БД выключены.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
	// LoadCatalogue дополнительно читать определения политик из policy_definitions.
	LoadCatalogue bool `mapstructure:"load_catalogue"`
}

// RedisConfig описывает подключение к Redis (Pub/Sub и состояние). Пустой Addr — Redis не используется.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig содержит путь к RSA ключу для проверки JWT операторов.
type AuthConfig struct {
	PublicKeyPath string `mapstructure:"public_key_path"`
	PublicKey     []byte
}

// EngineConfig настройки ядра.
type EngineConfig struct {
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// PluginsEnabled разрешает загрузку модулей из .so файлов.
	PluginsEnabled bool `mapstructure:"plugins_enabled"`
}

// NegotiationConfig канал к платформе.
type NegotiationConfig struct {
	Transport string        `mapstructure:"transport"` // grpc, loopback
	Target    string        `mapstructure:"target"`    // адрес платформенного gRPC сервиса
	Timeout   time.Duration `mapstructure:"timeout"`

	RateLimit float64 `mapstructure:"rate_limit"` // запросов в секунду, 0 — без лимита
	Burst     int     `mapstructure:"burst"`
	Attempts  uint    `mapstructure:"attempts"`

	// Настройки Circuit Breaker
	CBInterval    time.Duration `mapstructure:"cb_interval"`
	CBTimeout     time.Duration `mapstructure:"cb_timeout"`
	CBMaxFailures uint32        `mapstructure:"cb_max_failures"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
// Без аргументов ищет config.yaml в . и ./configs.
func LoadConfig(paths ...string) (*Config, *viper.Viper, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	v.SetConfigName("config") // имя файла без расширения
	v.SetConfigType("yaml")   // формат
	if len(paths) == 0 {
		paths = []string{".", "./configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// 2. Настройка переменных окружения (ENV)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Установка дефолтных значений
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}

	// 6. Загрузка ключа из Файла ИЛИ из ENV
	cfg.Auth.PublicKey = loadKeyResource(cfg.Auth.PublicKeyPath, EnvPrefix+"_AUTH_PUBLIC_KEY_DATA")

	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет то, что не выразить дефолтами.
func (c *Config) Validate() error {
	switch c.Negotiation.Transport {
	case "grpc":
		if c.Negotiation.Target == "" {
			return fmt.Errorf("negotiation.target is required for grpc transport")
		}
	case "loopback":
	default:
		return fmt.Errorf("unknown negotiation.transport %q", c.Negotiation.Transport)
	}

	seen := make(map[string]bool, len(c.Policies))
	for i, p := range c.Policies {
		if p.Name == "" || p.Path == "" {
			return fmt.Errorf("policies[%d]: name and path are required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("policies[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("database.max_conns", 15)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("engine.shutdown_timeout", 10*time.Second)
	v.SetDefault("negotiation.transport", "loopback")
	v.SetDefault("negotiation.timeout", 2*time.Second)
	v.SetDefault("negotiation.attempts", 3)
	v.SetDefault("negotiation.burst", 1)
	v.SetDefault("negotiation.cb_interval", 60*time.Second)
	v.SetDefault("negotiation.cb_timeout", 30*time.Second)
	v.SetDefault("negotiation.cb_max_failures", 5)
}

// loadKeyResource ключ либо прямо в ENV (для Docker/K8s), либо файлом по пути из конфига
func loadKeyResource(path string, envDataKey string) []byte {
	if data := os.Getenv(envDataKey); data != "" {
		return []byte(data)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
	}
	return nil
}
