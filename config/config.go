package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultServerPort       = 8080
	defaultNarrativeModel   = "gpt-4o-mini"
	defaultNarrativeTimeout = 8 * time.Second
	defaultAMQPExchange     = "cup.events"
	defaultSMTPPort         = 587
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	// Пустой DatabaseURL означает хранение в памяти процесса.
	DatabaseURL   string
	JWTSecretKey  string
	AdminPassword string
	ServerPort    int

	CORSAllowedOrigins []string

	Narrative NarrativeConfig
	AMQP      AMQPConfig
	R2        R2Config
	SMTP      SMTPConfig
}

type NarrativeConfig struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Enabled сообщает, настроен ли внешний генератор текста.
func (c NarrativeConfig) Enabled() bool {
	return c.APIURL != "" && c.APIKey != ""
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD environment variable is not set")
	}

	port := defaultServerPort
	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		port = p
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	timeout := defaultNarrativeTimeout
	if raw := os.Getenv("NARRATIVE_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid NARRATIVE_TIMEOUT environment variable: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("NARRATIVE_TIMEOUT must be positive, got %s", d)
		}
		timeout = d
	}

	smtpPort := defaultSMTPPort
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("invalid SMTP_PORT environment variable: %q", raw)
		}
		smtpPort = p
	}

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecretKey:       jwtKey,
		AdminPassword:      adminPassword,
		ServerPort:         port,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		Narrative: NarrativeConfig{
			APIURL:  os.Getenv("NARRATIVE_API_URL"),
			APIKey:  os.Getenv("NARRATIVE_API_KEY"),
			Model:   getEnv("NARRATIVE_MODEL", defaultNarrativeModel),
			Timeout: timeout,
		},
		AMQP: AMQPConfig{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: getEnv("AMQP_EXCHANGE", defaultAMQPExchange),
		},
		R2: R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
