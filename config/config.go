package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/vnkhanh/daily-pulse/questions"
	"github.com/vnkhanh/daily-pulse/store"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendSupabase  = "supabase"
	BackendMemory    = "memory"
)

type Config struct {
	Server    Server
	Firebase  Firebase
	Questions Questions
	Store     Store
	Auth      Auth
	LogLevel  string
	Timezone  string
}

type Server struct {
	Port           string
	AllowedOrigins []string
}

type Firebase struct {
	APIKey     string
	ProjectID  string
	DatabaseID string
}

type Questions struct {
	URL     string
	Timeout time.Duration
}

type Store struct {
	Backend  string
	Database store.PostgresConfig
	Supabase Supabase
}

type Supabase struct {
	URL    string
	Key    string
	Bucket string
}

// Auth: giới hạn đăng nhập/đăng ký theo IP.
type Auth struct {
	RatePerMinute int
	Burst         int
}

// NewConfig đọc .env (nếu có) rồi biến môi trường.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:8081")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FIREBASE_DATABASE_ID", "(default)")
	v.SetDefault("QUESTIONS_URL", questions.DefaultURL)
	v.SetDefault("QUESTIONS_TIMEOUT", "10s")
	v.SetDefault("STORE_BACKEND", BackendFirestore)
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("SUPABASE_BUCKET", store.DefaultBucket)
	v.SetDefault("AUTH_RATE_PER_MINUTE", 10)
	v.SetDefault("AUTH_RATE_BURST", 5)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var cfg Config
	cfg.Server.Port = v.GetString("SERVER_PORT")
	cfg.Server.AllowedOrigins = splitList(v.GetString("ALLOWED_ORIGINS"))
	cfg.LogLevel = v.GetString("LOG_LEVEL")
	cfg.Timezone = v.GetString("TIMEZONE")

	cfg.Firebase.APIKey = v.GetString("FIREBASE_API_KEY")
	cfg.Firebase.ProjectID = v.GetString("FIREBASE_PROJECT_ID")
	cfg.Firebase.DatabaseID = v.GetString("FIREBASE_DATABASE_ID")

	cfg.Questions.URL = v.GetString("QUESTIONS_URL")
	cfg.Questions.Timeout = v.GetDuration("QUESTIONS_TIMEOUT")

	cfg.Store.Backend = strings.ToLower(v.GetString("STORE_BACKEND"))
	cfg.Store.Database = store.PostgresConfig{
		Host:     v.GetString("DATABASE_HOST"),
		Port:     v.GetString("DATABASE_PORT"),
		User:     v.GetString("DATABASE_USER"),
		Password: v.GetString("DATABASE_PASSWORD"),
		Name:     v.GetString("DATABASE_NAME"),
		TimeZone: cfg.Timezone,
	}
	cfg.Store.Supabase = Supabase{
		URL:    v.GetString("SUPABASE_URL"),
		Key:    v.GetString("SUPABASE_KEY"),
		Bucket: v.GetString("SUPABASE_BUCKET"),
	}

	cfg.Auth.RatePerMinute = v.GetInt("AUTH_RATE_PER_MINUTE")
	cfg.Auth.Burst = v.GetInt("AUTH_RATE_BURST")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("port", cfg.Server.Port).
		Str("store", cfg.Store.Backend).
		Str("questions_url", cfg.Questions.URL).
		Msg("Config loaded")
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Firebase.APIKey == "" {
		return errors.New("FIREBASE_API_KEY is required")
	}
	switch c.Store.Backend {
	case BackendFirestore:
		if c.Firebase.ProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore backend")
		}
	case BackendPostgres:
		if c.Store.Database.Host == "" || c.Store.Database.Name == "" {
			return errors.New("DATABASE_HOST and DATABASE_NAME are required for the postgres backend")
		}
	case BackendSupabase:
		if c.Store.Supabase.URL == "" || c.Store.Supabase.Key == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY are required for the supabase backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Auth.RatePerMinute <= 0 || c.Auth.Burst <= 0 {
		return errors.New("AUTH_RATE_PER_MINUTE and AUTH_RATE_BURST must be positive")
	}
	if c.Questions.Timeout <= 0 {
		return errors.New("QUESTIONS_TIMEOUT must be positive")
	}
	return nil
}

// Location trả về múi giờ dùng để tính dateKey; mặc định giờ địa phương.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
