package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	DatabaseURL     string
	JWTSecret       string
	StripeSecretKey string
	UploadDir       string
	// PaymentTimeout bounds a single gateway capture call.
	PaymentTimeout time.Duration
}

func Load() Config {
	return Config{
		Addr:            getenv("ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		UploadDir:       getenv("UPLOAD_DIR", "./uploads"),
		PaymentTimeout:  time.Duration(getenvInt("PAYMENT_TIMEOUT_SECONDS", 15)) * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
