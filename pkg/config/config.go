package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/emotion_diary/pkg/tokens"
)

type Config struct {
	ServiceName string

	ServerPort  int
	MetricsPort int

	LogLevel string
	LogFile  string

	DatabaseURL string

	JWTSecret   []byte
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	RedisAddr       string
	RedisPassword   string
	LoginRateMax    int
	LoginRateWindow time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	SentimentURL      string
	OllamaURL         string
	OllamaModel       string
	HTTPClientTimeout time.Duration
}

// Load reads the given .env files when they exist and then the process
// environment. Variables already set in the environment win.
func Load(envFiles ...string) Config {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "emotion-diary"),

		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		MetricsPort: EnvIntDefault("METRICS_PORT", 9090),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		JWTIssuer:   EnvDefault("JWT_ISSUER", "emotion-diary"),
		JWTAudience: EnvDefault("JWT_AUDIENCE", "emotion-diary-app"),
		JWTTTL:      EnvDurationDefault("JWT_TTL", 24*time.Hour),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		LoginRateMax:    EnvIntDefault("LOGIN_RATE_MAX", 10),
		LoginRateWindow: EnvDurationDefault("LOGIN_RATE_WINDOW", time.Minute),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "diaries"),

		SentimentURL:      EnvDefault("SENTIMENT_URL", "http://localhost:5000"),
		OllamaURL:         EnvDefault("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:       EnvDefault("OLLAMA_MODEL", "gemma3"),
		HTTPClientTimeout: EnvDurationDefault("HTTP_CLIENT_TIMEOUT", 60*time.Second),
	}
}

func (c Config) Tokens() tokens.Config {
	return tokens.Config{
		Secret:   c.JWTSecret,
		Issuer:   c.JWTIssuer,
		Audience: c.JWTAudience,
		TTL:      c.JWTTTL,
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDurationDefault accepts Go durations ("15m") or a bare number of seconds.
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
