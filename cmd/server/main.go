package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Mohamed-Faroug/store-management-system/internal/cache"
	"github.com/Mohamed-Faroug/store-management-system/internal/config"
	"github.com/Mohamed-Faroug/store-management-system/internal/httpapi"
	"github.com/Mohamed-Faroug/store-management-system/internal/service"
	"github.com/Mohamed-Faroug/store-management-system/internal/store"
	pgstore "github.com/Mohamed-Faroug/store-management-system/internal/store/postgres"
	sqlitestore "github.com/Mohamed-Faroug/store-management-system/internal/store/sqlite"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with a local fallback", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	} else {
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Fatalf("create data directory: %v", err)
			}
		}
		lite, err := sqlitestore.New(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("open sqlite database at %s: %v", cfg.SQLitePath, err)
		}
		repo = lite
		closers = append(closers, lite.Close)
		log.Printf("repository: sqlite (%s)", cfg.SQLitePath)
	}

	alertCache := cache.StockAlertCache(cache.NoopStockAlertCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisStockAlertCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			alertCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	svc := service.New(repo, alertCache, time.Duration(cfg.AlertTTLSeconds)*time.Second, service.Settings{
		TaxRatePercent:       cfg.TaxRatePercent,
		PaymentMethods:       cfg.PaymentMethods,
		UpdateCostOnPurchase: cfg.UpdateCostOnPurchase,
	})
	auth := httpapi.NewAuthManager(repo, []byte(cfg.AuthSecret), time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute)
	if err := seedUsers(ctx, auth, cfg); err != nil {
		log.Fatalf("seed users: %v", err)
	}
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("%s listening on %s", cfg.StoreName, cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

// seedUsers creates the built-in admin and cashier accounts on first boot.
// Accounts that already exist keep their stored password, so rotating the
// env vars later has no effect on a populated database.
func seedUsers(ctx context.Context, auth *httpapi.AuthManager, cfg config.Config) error {
	if cfg.AdminPassword != "" {
		if err := auth.EnsureUser(ctx, "admin", cfg.AdminPassword, "admin"); err != nil {
			return fmt.Errorf("admin account: %w", err)
		}
	} else {
		log.Println("ADMIN_PASSWORD not set, skipping admin account seed")
	}
	if cfg.CashierPassword != "" {
		if err := auth.EnsureUser(ctx, "cashier", cfg.CashierPassword, "cashier"); err != nil {
			return fmt.Errorf("cashier account: %w", err)
		}
	}
	return nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if pw := cfg.AdminPassword; pw != "" && len(pw) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}
	if pw := cfg.CashierPassword; pw != "" && len(pw) < 8 {
		return fmt.Errorf("CASHIER_PASSWORD must be at least 8 characters")
	}
	return nil
}
