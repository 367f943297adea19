package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr        string
	DatabaseDSN     string
	JWTSecret       string
	MaxRequestBytes int64

	// Fixed conversion rates for the local gateway, USD per coin.
	RateBTC float64
	RateETH float64
}

func Load() Config {
	cfg := Config{
		HTTPAddr:        getEnv("CRYPTOPAY_HTTP_ADDR", ":5000"),
		DatabaseDSN:     getEnv("CRYPTOPAY_DB_DSN", "file:cryptopay.db?cache=shared&mode=rwc"),
		JWTSecret:       getEnv("CRYPTOPAY_JWT_SECRET", "dev-secret-change"),
		MaxRequestBytes: 1 << 20,
		RateBTC:         getEnvFloat("CRYPTOPAY_RATE_BTC", 65000),
		RateETH:         getEnvFloat("CRYPTOPAY_RATE_ETH", 3400),
	}
	if cfg.JWTSecret == "dev-secret-change" {
		log.Println("WARNING: using development JWT secret; set CRYPTOPAY_JWT_SECRET")
	}
	return cfg
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}
