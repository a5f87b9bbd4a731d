package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const EnvDev = "dev"

type Config struct {
	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	CORS      CORSConfig      `koanf:"cors"`
	MetaKeep  MetaKeepConfig  `koanf:"metakeep"`
	Assets    AssetsConfig    `koanf:"assets"`
	Mailer    MailerConfig    `koanf:"mailer"`
	Database  DatabaseConfig  `koanf:"database"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Logger    LoggerConfig    `koanf:"logger"`
	Worker    WorkerConfig    `koanf:"worker"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins" validate:"required,min=1"`
}

type MetaKeepConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	APIKey  string        `koanf:"api_key" validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"required"`
}

type AssetsConfig struct {
	BCNAddress       string        `koanf:"bcn_address" validate:"required"`
	USDCAddress      string        `koanf:"usdc_address" validate:"required"`
	USDCName         string        `koanf:"usdc_name" validate:"required"`
	USDCVersion      string        `koanf:"usdc_version" validate:"required"`
	ChainID          int64         `koanf:"chain_id" validate:"required"`
	AuthorizationTTL time.Duration `koanf:"authorization_ttl" validate:"required"`
}

// MailerConfig has no required fields; the notifier reports missing
// credentials when a send is attempted.
type MailerConfig struct {
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`
	FromEmail string `koanf:"from_email" validate:"omitempty,email"`
	Subject   string `koanf:"subject"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

// Enabled reports whether the delivery journal should be backed by Postgres.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=text json"`
}

type WorkerConfig struct {
	Interval time.Duration `koanf:"interval" validate:"required"`
}

var defaultOrigins = []string{
	"https://banza-ec2bc.web.app",
	"https://alpha.banza.xyz",
}

func defaults() map[string]any {
	return map[string]any{
		"primary.env":                 "production",
		"server.port":                 "1555",
		"server.read_timeout":         "15s",
		"server.write_timeout":        "30s",
		"server.idle_timeout":         "60s",
		"server.request_timeout":      "25s",
		"cors.allowed_origins":        defaultOrigins,
		"metakeep.base_url":           "https://api.metakeep.xyz",
		"metakeep.timeout":            "20s",
		"assets.bcn_address":          "0xc6E5740786236Ae58092f07b62B120753eB428d1",
		"assets.usdc_name":            "MockUSD",
		"assets.usdc_version":         "1",
		"assets.chain_id":             80002,
		"assets.authorization_ttl":    "1h",
		"mailer.host":                 "smtp.gmail.com",
		"mailer.port":                 587,
		"mailer.subject":              " Great news! You have received funds! | Banza",
		"database.port":               5432,
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     5,
		"database.max_idle_conns":     1,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "15m",
		"rate_limit.rps":              10,
		"rate_limit.burst":            20,
		"logger.level":                "info",
		"logger.format":               "text",
		"worker.interval":             "5m",
	}
}

// legacyEnv maps the variable names the service was first deployed with onto
// config keys. They only apply when the PROXY_ form is unset.
var legacyEnv = map[string]string{
	"PORT":                "server.port",
	"NODE_ENV":            "primary.env",
	"METAKEEP_API_KEY":    "metakeep.api_key",
	"MAILER_FROM_EMAIL":   "mailer.from_email",
	"MAILER_APP_PASSWORD": "mailer.password",
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load defaults", "error", err)
		return nil, err
	}

	legacy := map[string]any{}
	for name, key := range legacyEnv {
		if v := os.Getenv(name); v != "" {
			legacy[key] = v
		}
	}
	// the sender address doubles as the SMTP login in the legacy layout
	if v := os.Getenv("MAILER_FROM_EMAIL"); v != "" {
		legacy["mailer.username"] = v
	}
	if err := k.Load(confmap.Provider(legacy, "."), nil); err != nil {
		logger.Error("failed to load legacy environment", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider("PROXY_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "PROXY_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	mainConfig.CORS.AllowedOrigins = splitOrigins(mainConfig.CORS.AllowedOrigins)
	if mainConfig.Primary.Env == EnvDev {
		mainConfig.CORS.AllowedOrigins = append(mainConfig.CORS.AllowedOrigins, "http://localhost:3000")
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// splitOrigins accepts both a list and a single comma separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
