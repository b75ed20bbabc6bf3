package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saboaria/backend/internal/config"
	"saboaria/backend/internal/httpapi"
	"saboaria/backend/internal/service"
	"saboaria/backend/internal/snapshot"
	"saboaria/backend/internal/store/memory"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := memory.New()
	closers := make([]func() error, 0, 2)

	slot, slotName, err := openSlot(ctx, cfg)
	if err != nil {
		log.Fatalf("snapshot slot unavailable: %v", err)
	}
	closers = append(closers, slot.Close)
	log.Printf("snapshot slot: %s", slotName)

	if err := snapshot.Recover(ctx, repo, slot); err != nil {
		log.Fatalf("snapshot recovery failed: %v", err)
	}

	snapshotter := snapshot.NewSnapshotter(repo, slot, time.Duration(cfg.SnapshotDebounceSeconds)*time.Second)
	repo.SetMutationObserver(snapshotter)

	svc := service.New(repo)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
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
		log.Printf("operations backend listening on %s", cfg.Address())
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

	// Last chance to persist the final burst of mutations.
	snapshotter.Close()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

// openSlot picks the snapshot backend: postgres when DATABASE_URL is
// set, else redis when REDIS_ADDR is set, else a local file. An
// unreachable configured backend is fatal rather than silently falling
// back, because the slot is the only durability the store has.
func openSlot(ctx context.Context, cfg config.Config) (snapshot.Slot, string, error) {
	if cfg.DatabaseURL != "" {
		slot, err := snapshot.NewPostgresSlot(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("postgres: %w", err)
		}
		return slot, "postgres", nil
	}

	if cfg.RedisAddr != "" {
		slot := snapshot.NewRedisSlot(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := slot.Ping(ctx); err != nil {
			_ = slot.Close()
			return nil, "", fmt.Errorf("redis: %w", err)
		}
		return slot, "redis", nil
	}

	slot, err := snapshot.NewFileSlot(cfg.SnapshotPath)
	if err != nil {
		return nil, "", fmt.Errorf("file: %w", err)
	}
	return slot, fmt.Sprintf("file (%s)", cfg.SnapshotPath), nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
