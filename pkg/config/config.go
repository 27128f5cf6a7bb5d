package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Solver strategy names accepted by SOLVER_STRATEGY.
const (
	StrategyOptimizer    = "optimizer"
	StrategyBacktracking = "backtracking"
	StrategyCompeting    = "competing"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Auth     AuthConfig
	Grid     GridConfig
	Solver   SolverConfig
	Jobs     JobsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AuthConfig gates the bearer-token guard; an empty secret disables it.
type AuthConfig struct {
	Secret string
}

// GridConfig fixes the weekly timetable geometry for a deployment.
type GridConfig struct {
	Days          int
	PeriodsPerDay int
	MaxPerSlot    int
}

// SolverConfig bounds a solving run.
type SolverConfig struct {
	Strategy         string
	MaxIterations    int
	TimeLimit        time.Duration
	StagnationLimit  int
	ProgressInterval int
	Workers          int
	RunTTL           time.Duration
}

// JobsConfig sizes the async generation queue.
type JobsConfig struct {
	Workers    int
	BufferSize int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Auth = AuthConfig{Secret: v.GetString("AUTH_TOKEN_SECRET")}

	cfg.Grid = GridConfig{
		Days:          v.GetInt("GRID_DAYS"),
		PeriodsPerDay: v.GetInt("GRID_PERIODS_PER_DAY"),
		MaxPerSlot:    v.GetInt("GRID_MAX_PER_SLOT"),
	}

	cfg.Solver = SolverConfig{
		Strategy:         v.GetString("SOLVER_STRATEGY"),
		MaxIterations:    v.GetInt("SOLVER_MAX_ITERATIONS"),
		TimeLimit:        parseDuration(v.GetString("SOLVER_TIME_LIMIT"), 30*time.Second),
		StagnationLimit:  v.GetInt("SOLVER_STAGNATION_LIMIT"),
		ProgressInterval: v.GetInt("SOLVER_PROGRESS_INTERVAL"),
		Workers:          v.GetInt("SOLVER_WORKERS"),
		RunTTL:           parseDuration(v.GetString("SOLVER_RUN_TTL"), 30*time.Minute),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("AUTH_TOKEN_SECRET", "")

	v.SetDefault("GRID_DAYS", 4)
	v.SetDefault("GRID_PERIODS_PER_DAY", 10)
	v.SetDefault("GRID_MAX_PER_SLOT", 3)

	v.SetDefault("SOLVER_STRATEGY", StrategyOptimizer)
	v.SetDefault("SOLVER_MAX_ITERATIONS", 5000)
	v.SetDefault("SOLVER_TIME_LIMIT", "30s")
	v.SetDefault("SOLVER_STAGNATION_LIMIT", 50)
	v.SetDefault("SOLVER_PROGRESS_INTERVAL", 500)
	v.SetDefault("SOLVER_WORKERS", 2)
	v.SetDefault("SOLVER_RUN_TTL", "30m")

	v.SetDefault("JOBS_WORKERS", 1)
	v.SetDefault("JOBS_BUFFER_SIZE", 8)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
