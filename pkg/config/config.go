package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/domain/telemetry"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Routes    []string        `mapstructure:"routes"`
	Security  policy.Settings `mapstructure:"security"`
}

type ServerConfig struct {
	AdminPort   int    `mapstructure:"admin_port"`
	ProxyPort   int    `mapstructure:"proxy_port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Type        string `mapstructure:"type"`
	Host        string `mapstructure:"host"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

type MetricsConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Workers     int  `mapstructure:"workers"`
	QueueSize   int  `mapstructure:"queue_size"`
	StageTraces bool `mapstructure:"stage_traces"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type UpstreamConfig struct {
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxConnsPerHost int           `mapstructure:"max_conns_per_host"`
}

type AuthConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Secret         string   `mapstructure:"secret"`
	AdminSecret    string   `mapstructure:"admin_secret"`
	PublicPrefixes []string `mapstructure:"public_prefixes"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Limit    int           `mapstructure:"limit"`
	Window   time.Duration `mapstructure:"window"`
	Prefixes []string      `mapstructure:"prefixes"`
}

// TelemetryConfig lists the security event exporters. Settings are decoded
// by each exporter.
type TelemetryConfig struct {
	Exporters []telemetry.ExporterConfig `mapstructure:"exporters"`
}

var DefaultRoutes = []string{
	"/api/users/:userId",
	"/api/courses/:courseId",
	"/api/courses/:courseId/lectures",
	"/api/courses/:courseId/students/:studentId",
	"/api/lectures/:lectureId",
	"/api/lectures/:lectureId/materials",
	"/api/materials/:materialId",
	"/api/quizzes/:quizId",
	"/api/quizzes/:quizId/questions/:questionId",
	"/api/discussions/:discussionId",
	"/api/discussions/:discussionId/replies/:replyId",
	"/api/instructors/:instructorId",
	"/api/statistics/courses/:courseId",
}

// Load reads config.yaml from configPath, then ./config and the working
// directory, with environment overrides. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaultValues(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Routes) == 0 {
		cfg.Routes = append([]string(nil), DefaultRoutes...)
	}
	return &cfg, nil
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.admin_port", 8080)
	v.SetDefault("server.proxy_port", 8081)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.type", "all")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.dir", "logs")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.workers", 4)
	v.SetDefault("metrics.queue_size", 10000)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("upstream.url", "http://localhost:3000")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.max_conns_per_host", 512)
	v.SetDefault("auth.public_prefixes", []string{"/api/auth", "/api/public"})
	v.SetDefault("rate_limit.limit", 20)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("rate_limit.prefixes", []string{"/api/auth"})
}

// BuildPolicy compiles the security settings into the policy shared by the
// pipeline.
func (c *Config) BuildPolicy() (*policy.Policy, error) {
	p, err := policy.New(c.Security)
	if err != nil {
		return nil, fmt.Errorf("invalid security settings: %w", err)
	}
	return p, nil
}
