package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is read from the environment once at startup and handed to the
// components that need it; nothing reads env vars at request time.
type Config struct {
	Port string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisAddr    string
	KafkaBrokers []string

	JWTSecret string

	RazorpayKeyID     string
	RazorpayKeySecret string
	Currency          string

	ShippingFee     float64
	FreeShippingMin float64
	TaxRate         float64

	CheckoutTTL     time.Duration
	ProductCacheTTL time.Duration
}

func Load() Config {
	return Config{
		Port: getenv("PORT", "8080"),

		DBHost: getenv("DB_HOST", "127.0.0.1"),
		DBPort: getenv("DB_PORT", "3306"),
		DBUser: getenv("DB_USER", "root"),
		DBPass: os.Getenv("DB_PASS"),
		DBName: getenv("DB_NAME", "shop-db"),

		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: strings.Split(getenv("KAFKA_BROKERS", "localhost:9092,localhost:9093,localhost:9094"), ","),

		JWTSecret: getenv("JWT_SECRET", "secret"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		Currency:          getenv("CURRENCY", "INR"),

		ShippingFee:     getFloat("SHIPPING_FEE", 10),
		FreeShippingMin: getFloat("FREE_SHIPPING_MIN", 100),
		TaxRate:         getFloat("TAX_RATE", 0.15),

		CheckoutTTL:     getDuration("CHECKOUT_TTL", 30*time.Minute),
		ProductCacheTTL: getDuration("PRODUCT_CACHE_TTL", time.Minute),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
