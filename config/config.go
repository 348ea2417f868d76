package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bookdesk/librarian/internal/notify"
	"github.com/bookdesk/librarian/pkg/kafka"
	"github.com/bookdesk/librarian/pkg/logger"
	"github.com/bookdesk/librarian/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration
}

type Loan struct {
	PeriodDays int `yaml:"periodDays" envconfig:"LOAN_PERIOD_DAYS" default:"14"`
}

type Config struct {
	Server   HTTPServer      `yaml:"server"`
	Database postgres.Config `yaml:"database"`
	Kafka    kafka.Config    `yaml:"kafka"`
	SMTP     notify.Config   `yaml:"smtp"`
	Loan     Loan            `yaml:"loan"`
	Log      logger.Log      `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return &cfg
}

type Option func(*Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Server.WriteTimeout = timeout
	}
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
