package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/himanishpuri/MelodyDNA/pkg/logger"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/storage"
)

var (
	port           int
	dbPath         string
	allowedOrigins string
	maxGenerations int

	rootCmd = &cobra.Command{
		Use:           "melodydna-server",
		Short:         "HTTP API for running melody searches and browsing stored runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServer,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.IntVar(&port, "port", 8080, "HTTP server port")
	flags.StringVar(&dbPath, "db", "", "Path to SQLite database (default $"+storage.EnvDBPath+" or "+storage.DefaultDBFile+")")
	flags.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flags.IntVar(&maxGenerations, "max-generations", 100000, "Largest generation budget a request may ask for")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseOrigins(s string) []string {
	if s == "*" {
		return []string{"*"}
	}
	origins := strings.Split(s, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func runServer(cmd *cobra.Command, args []string) error {
	if dbPath == "" {
		dbPath = getEnvOrDefault(storage.EnvDBPath, storage.DefaultDBFile)
	}
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	server := NewServer(db, &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		AllowedOrigins: parseOrigins(allowedOrigins),
		MaxGenerations: maxGenerations,
	})
	return server.Start()
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("ignoring .env: %v", err)
	}
	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
