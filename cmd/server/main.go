package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/disenocorptpc-dot/wonderwoods/internal/api"
	"github.com/disenocorptpc-dot/wonderwoods/internal/config"
	"github.com/disenocorptpc-dot/wonderwoods/internal/db"
	"github.com/disenocorptpc-dot/wonderwoods/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: server <init|serve>")
		os.Exit(1)
	}

	cfg := config.LoadServer()

	switch os.Args[1] {
	case "init":
		cmdInit(cfg, os.Args[2:])
	case "serve":
		cmdServe(cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\nUsage: server <init|serve>\n", os.Args[1])
		os.Exit(1)
	}
}

func cmdInit(cfg config.Server, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "path to SQLite database file")
	fs.Parse(args)

	if _, err := os.Stat(*dbPath); err == nil {
		fmt.Fprintf(os.Stderr, "Error: database file %s already exists\n", *dbPath)
		os.Exit(1)
	}

	database, accessKey, err := initDatabase(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	database.Close()

	printBootstrap(*dbPath, accessKey)
}

func cmdServe(cfg config.Server, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "path to SQLite database file")
	addr := fs.String("addr", cfg.Addr, "listen address")
	fs.Parse(args)

	// Auto-init on first run.
	if _, err := os.Stat(*dbPath); os.IsNotExist(err) {
		database, accessKey, err := initDatabase(*dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		database.Close()
		printBootstrap(*dbPath, accessKey)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		log.Fatalf("Failed to load JWT secret: %v", err)
	}

	handler := api.LoggingMiddleware(api.NewRouter(database, jwtSecret, cfg.CORSAllowedOrigins))

	fmt.Printf("Wonderwoods store listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initDatabase creates a new database, runs migrations, creates the
// empty catalog aggregate, and generates the shared access key.
func initDatabase(path string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	cleanup := func() {
		database.Close()
		os.Remove(path)
	}

	if err := db.Migrate(database); err != nil {
		cleanup()
		return nil, "", fmt.Errorf("running migrations: %w", err)
	}

	ctx := context.Background()
	if _, err := store.EnsureCatalog(ctx, database); err != nil {
		cleanup()
		return nil, "", fmt.Errorf("creating catalog: %w", err)
	}

	accessKey, err := generateAccessKey(24)
	if err != nil {
		cleanup()
		return nil, "", fmt.Errorf("generating access key: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(accessKey), bcrypt.DefaultCost)
	if err != nil {
		cleanup()
		return nil, "", fmt.Errorf("hashing access key: %w", err)
	}

	if err := store.SetAccessKeyHash(ctx, database, string(hash)); err != nil {
		cleanup()
		return nil, "", fmt.Errorf("storing access key: %w", err)
	}

	return database, accessKey, nil
}

func printBootstrap(dbPath, accessKey string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Catalog initialized.")
	fmt.Println()
	fmt.Println("Access key for clients:")
	fmt.Printf("  %s\n", accessKey)
	fmt.Println()
	fmt.Println("Save this key — it cannot be recovered.")
}

// generateAccessKey creates a random key of the given length.
func generateAccessKey(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
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
