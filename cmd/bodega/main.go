package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/crisoull/bodega/internal/api"
	"github.com/crisoull/bodega/internal/auth"
	"github.com/crisoull/bodega/internal/config"
	"github.com/crisoull/bodega/internal/db"
	"github.com/crisoull/bodega/internal/logger"
	"github.com/crisoull/bodega/internal/model"
	"github.com/crisoull/bodega/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Flags override the environment.
	dbPath := flag.String("db", "", "SQLite database path")
	addr := flag.String("addr", "", "listen address")
	flag.Parse()
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	firstRun := false
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		firstRun = true
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	log.Info().Str("path", cfg.DBPath).Msg("database ready")

	st := store.New(database, store.WithOverdueAfter(cfg.OverdueAfter))
	ctx := context.Background()
	if err := st.Load(ctx); err != nil {
		return fmt.Errorf("loading snapshots: %w", err)
	}

	if firstRun {
		password, err := bootstrapAdmin(ctx, st, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}
		printInitResult(cfg.DBPath, cfg.AdminUser, password)
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = st.JWTSecret(ctx)
		if err != nil {
			return fmt.Errorf("loading jwt secret: %w", err)
		}
	}

	hooks := &auth.Hooks{}
	hooks.Pre(auth.ScreenLogin)
	hooks.Post(func(ctx context.Context, ev auth.LoginEvent) {
		log.Info().
			Str("username", ev.Username).
			Str("remote", ev.Remote).
			Bool("success", ev.Success).
			Msg("login attempt")
	})

	router := api.NewRouter(&api.Server{
		Store:     st,
		JWTSecret: jwtSecret,
		Log:       log,
		Lockout:   auth.NewLockout(),
		Hooks:     hooks,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Periodic overdue sweep, logged so operators see stuck loans.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go overdueSweeper(sweepCtx, st, cfg.OverdueSweep, log)

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Msg("server started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	log.Info().Msg("server stopped, closing database")
	return nil
}

// overdueSweeper periodically recomputes overdue loans and logs them.
func overdueSweeper(ctx context.Context, st *store.Store, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, t := range st.Overdue() {
				log.Warn().
					Int64("tool_id", t.ID).
					Str("tool", t.Name).
					Time("loaned_at", *t.LoanedAt).
					Msg("loan overdue")
			}
		}
	}
}

// bootstrapAdmin creates the admin account with a generated password.
func bootstrapAdmin(ctx context.Context, st *store.Store, username string) (string, error) {
	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err := st.CreateUser(ctx, username, string(hash), model.RoleAdmin); err != nil {
		return "", err
	}
	return password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password — it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
