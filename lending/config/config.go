package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/lending-service/pkg/circuit_breaker"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/Astemirdum/lending-service/pkg/logger"
	"github.com/Astemirdum/lending-service/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LENDING_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LENDING_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"30s"`
}

type Stripe struct {
	SecretKey  string        `envconfig:"STRIPE_SECRET_KEY"`
	SuccessURL string        `envconfig:"STRIPE_SUCCESS_URL" default:"http://localhost:8080/api/v1/payments/success?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL  string        `envconfig:"STRIPE_CANCEL_URL" default:"http://localhost:8080/api/v1/payments/cancel?session_id={CHECKOUT_SESSION_ID}"`
	Currency   string        `envconfig:"STRIPE_CURRENCY" default:"usd"`
	Timeout    time.Duration `envconfig:"STRIPE_TIMEOUT" default:"10s"`
}

type Telegram struct {
	BotToken string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64         `envconfig:"TELEGRAM_CHAT_ID"`
	Timeout  time.Duration `envconfig:"TELEGRAM_TIMEOUT" default:"5s"`
}

type NotifyMode string

const (
	NotifyDirect NotifyMode = "direct"
	NotifyKafka  NotifyMode = "kafka"
)

func (m NotifyMode) Validate() error {
	switch m {
	case NotifyDirect, NotifyKafka:
		return nil
	}
	return fmt.Errorf("NOTIFY_MODE %q: want %q or %q", string(m), NotifyDirect, NotifyKafka)
}

type Redis struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	KeyTTL   time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
}

type Jobs struct {
	OverdueSpec    string        `envconfig:"JOBS_OVERDUE_SPEC" default:"0 9 * * *"`
	ExpirationSpec string        `envconfig:"JOBS_EXPIRATION_SPEC" default:"*/30 * * * *"`
	Concurrency    int           `envconfig:"JOBS_CONCURRENCY" default:"4"`
	ItemTimeout    time.Duration `envconfig:"JOBS_ITEM_TIMEOUT" default:"10s"`
	SessionGrace   time.Duration `envconfig:"JOBS_SESSION_GRACE" default:"15m"`
	Disabled       bool          `envconfig:"JOBS_DISABLED"`
}

type Config struct {
	Server         HTTPServer             `yaml:"server"`
	Database       postgres.DB            `yaml:"db"`
	Log            logger.Log             `yaml:"log"`
	Kafka          kafka.Config           `yaml:"kafka"`
	Stripe         Stripe                 `yaml:"stripe"`
	Telegram       Telegram               `yaml:"telegram"`
	NotifyMode     NotifyMode             `yaml:"notifyMode" envconfig:"NOTIFY_MODE" default:"direct"`
	Redis          Redis                  `yaml:"redis"`
	Jobs           Jobs                   `yaml:"jobs"`
	CircuitBreaker circuit_breaker.Config `yaml:"circuitBreaker"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		// options win over env defaults
		for _, op := range ops {
			op(&config)
		}
		if err := config.NotifyMode.Validate(); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
	})

	return cfg
}
