package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	SQLitePath            string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	AlertTTLSeconds       int
	AuthSecret            string
	AccessTokenTTLMinutes int
	StoreName             string
	Currency              string
	TaxRatePercent        decimal.Decimal
	PaymentMethods        []string
	UpdateCostOnPurchase  bool
	AdminPassword         string
	CashierPassword       string
}

// Load reads configuration from the environment, after merging a local .env
// file when one exists. Explicit environment variables win over .env values.
func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	alertTTL, err := strconv.Atoi(getEnv("STOCK_ALERT_TTL_SECONDS", "30"))
	if err != nil || alertTTL < 1 {
		alertTTL = 30
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	taxRate, err := decimal.NewFromString(getEnv("TAX_RATE_PERCENT", "0"))
	if err != nil || taxRate.IsNegative() {
		taxRate = decimal.Zero
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		SQLitePath:            getEnv("SQLITE_PATH", "data/store.db"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		AlertTTLSeconds:       alertTTL,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		StoreName:             getEnv("STORE_NAME", "Store Management System"),
		Currency:              getEnv("CURRENCY", "USD"),
		TaxRatePercent:        taxRate,
		PaymentMethods:        splitList(getEnv("PAYMENT_METHODS", "cash,card,transfer")),
		UpdateCostOnPurchase:  getEnv("UPDATE_COST_ON_PURCHASE", "true") != "false",
		AdminPassword:         strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		CashierPassword:       strings.TrimSpace(os.Getenv("CASHIER_PASSWORD")),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
