package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         int
	MaxPortTries int
	JWTSecret    string
	JWTTTL       time.Duration
	RedisURL     string
	CORSOrigins  []string
}

func LoadConfig() *Config {
	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	port, err := strconv.Atoi(getEnv("PORT", "4000"))
	if err != nil {
		log.Fatalf("Invalid PORT: %v", err)
	}

	ttlHours, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "168"))
	if err != nil || ttlHours <= 0 {
		ttlHours = 168
	}

	return &Config{
		Port:         port,
		MaxPortTries: 10,
		JWTSecret:    secret,
		JWTTTL:       time.Duration(ttlHours) * time.Hour,
		RedisURL:     getEnv("REDIS_URL", ""),
		CORSOrigins:  parseOrigins(getEnv("CORS_ORIGIN", "")),
	}
}

func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}
