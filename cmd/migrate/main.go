package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"datacash/internal/common/config"
	"datacash/internal/common/logging"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func usage() {
	fmt.Println("Usage: migrate [-path dir] <command>")
	fmt.Println("Commands:")
	fmt.Println("  up          Apply all pending journal migrations")
	fmt.Println("  down        Roll back the last migration")
	fmt.Println("  force <v>   Mark version v as applied and clear the dirty flag")
	fmt.Println("  version     Show current migration version")
}

func main() {
	path := flag.String("path", "migrations", "directory holding the SQL migrations")
	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	m, err := migrate.New("file://"+*path, cfg.DatabaseURL)
	if err != nil {
		logging.Error("Failed to create migrator", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	switch args[0] {
	case "up":
		logging.Info("Applying migrations", "path", *path)
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logging.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		logging.Info("Migrations applied successfully")

	case "down":
		logging.Info("Rolling back last migration")
		if err := m.Steps(-1); err != nil {
			logging.Error("Rollback failed", "error", err)
			os.Exit(1)
		}
		logging.Info("Rollback completed")

	case "force":
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid version %q: %v\n", args[1], err)
			os.Exit(1)
		}
		if err := m.Force(version); err != nil {
			logging.Error("Force failed", "error", err)
			os.Exit(1)
		}
		logging.Info("Version forced", "version", version)

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("Version: none")
			return
		}
		if err != nil {
			logging.Error("Failed to get version", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Version: %d, Dirty: %v\n", version, dirty)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		os.Exit(1)
	}
}
