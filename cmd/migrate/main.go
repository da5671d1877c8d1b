package main

import (
	"bytes"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/fabmate/backend/internal/infrastructure/config"
	"github.com/fabmate/backend/internal/infrastructure/event"
	"github.com/fabmate/backend/internal/infrastructure/logger"
	"github.com/fabmate/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

type migrateCLI struct {
	log  *zap.Logger
	cfg  *config.Config
	path string
	args []string
}

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	cli := &migrateCLI{
		log:  log,
		cfg:  cfg,
		path: resolveMigrationsPath(log, migrationsPath),
		args: args[1:],
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", cli.path),
	)

	if err := cli.run(command); err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

// resolveMigrationsPath falls back to ./migrations, then to the migrations
// directory two levels above the executable, matching the layout when the
// tool is built into bin/.
func resolveMigrationsPath(log *zap.Logger, path string) string {
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if execPath, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}
	return abs
}

func (c *migrateCLI) run(command string) error {
	switch command {
	case "create":
		return c.create()
	case "list":
		return c.list()
	case "up", "down", "step", "goto", "version", "force", "drop", "events":
		return c.runAgainstDB(command)
	default:
		c.log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
		return nil
	}
}

// arg returns the i-th positional argument after the command.
func (c *migrateCLI) arg(i int, usage string) (string, error) {
	if len(c.args) <= i {
		return "", errors.New(usage)
	}
	return c.args[i], nil
}

func (c *migrateCLI) create() error {
	name, err := c.arg(0, "migration name required, usage: migrate create <name> [description]")
	if err != nil {
		return err
	}
	description := ""
	if len(c.args) > 1 {
		description = c.args[1]
	}

	mf, err := migration.CreateMigration(c.path, name, description)
	if err != nil {
		return fmt.Errorf("create migration: %w", err)
	}

	c.log.Info("Migration created successfully",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func (c *migrateCLI) list() error {
	migrations, err := migration.ListMigrations(c.path)
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	if len(migrations) == 0 {
		c.log.Info("No migrations found")
		return nil
	}

	c.log.Info("Available migrations", zap.Int("count", len(migrations)))
	for _, m := range migrations {
		fmt.Println("  -", m)
	}
	return nil
}

func (c *migrateCLI) runAgainstDB(command string) error {
	db, err := sql.Open("postgres", c.cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if command == "events" {
		return migrateOutboxPayloads(db, c.log)
	}

	m, err := migration.New(db, c.path, c.log)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		raw, err := c.arg(0, "step count required, usage: migrate step <n>")
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid step count %q", raw)
		}
		return m.Steps(n)
	case "goto":
		raw, err := c.arg(0, "version required, usage: migrate goto <version>")
		if err != nil {
			return err
		}
		version, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version number %q", raw)
		}
		return m.GoTo(uint(version))
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		if version == 0 {
			c.log.Info("No migrations applied")
		} else {
			c.log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}
		return nil
	case "force":
		raw, err := c.arg(0, "version required, usage: migrate force <version>")
		if err != nil {
			return err
		}
		version, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid version number %q", raw)
		}
		c.log.Warn("Forcing migration version - use with caution!")
		return m.Force(version)
	case "drop":
		if !slices.Contains(c.args, "-confirm") && !slices.Contains(c.args, "--confirm") {
			return errors.New("drop cancelled, use 'migrate drop -confirm' to confirm")
		}
		c.log.Warn("Dropping all database objects")
		return m.Drop()
	}
	return nil
}

// migrateOutboxPayloads rewrites unsent outbox payloads stored under an older
// event schema version. The server upgrades payloads at read time anyway;
// running this after a deploy keeps the stored rows current so dead-letter
// inspection shows the latest shape.
func migrateOutboxPayloads(db *sql.DB, log *zap.Logger) error {
	serializer := event.NewVersionedSerializer(log)
	event.RegisterAllEvents(serializer)
	migrator := event.NewEventMigrator(serializer, log)

	rows, err := db.Query(`SELECT id, event_type, payload FROM outbox_events WHERE status IN ('PENDING', 'FAILED', 'DEAD')`)
	if err != nil {
		return fmt.Errorf("failed to query outbox entries: %w", err)
	}
	defer rows.Close()

	type outboxRow struct {
		id        string
		eventType string
		payload   []byte
	}
	var entries []outboxRow
	for rows.Next() {
		var r outboxRow
		if err := rows.Scan(&r.id, &r.eventType, &r.payload); err != nil {
			return fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		entries = append(entries, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var upgraded, current, failed int
	for _, r := range entries {
		newPayload, version, err := migrator.MigratePayload(r.eventType, r.payload)
		if err != nil {
			failed++
			log.Warn("Failed to upgrade outbox payload",
				zap.String("id", r.id),
				zap.String("event_type", r.eventType),
				zap.Error(err),
			)
			continue
		}
		if bytes.Equal(newPayload, r.payload) {
			current++
			continue
		}
		if _, err := db.Exec(`UPDATE outbox_events SET payload = $1 WHERE id = $2`, newPayload, r.id); err != nil {
			return fmt.Errorf("failed to update outbox entry %s: %w", r.id, err)
		}
		upgraded++
		log.Debug("Upgraded outbox payload",
			zap.String("id", r.id),
			zap.String("event_type", r.eventType),
			zap.Int("to_version", version),
		)
	}

	log.Info("Outbox payload migration complete",
		zap.Int("upgraded", upgraded),
		zap.Int("already_current", current),
		zap.Int("failed", failed),
	)
	return nil
}

func printUsage() {
	fmt.Println(`FabMate Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply every pending migration
  down                  Roll back every applied migration
  step <n>              Apply n migrations (negative n rolls back)
  goto <version>        Migrate the schema to a specific version
  version               Print the current schema version
  force <version>       Overwrite the recorded version (use with caution)
  drop -confirm         Drop all database objects (DANGEROUS)
  create <name> [desc]  Write a new up/down migration file pair
  list                  List the migration files on disk
  events                Upgrade unsent outbox payloads to the current event schema

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  FABMATE_DATABASE_HOST, FABMATE_DATABASE_PORT, FABMATE_DATABASE_USER,
  FABMATE_DATABASE_PASSWORD, FABMATE_DATABASE_DBNAME, FABMATE_DATABASE_SSLMODE

Examples:
  # Apply all pending migrations
  migrate up

  # Roll back the last migration
  migrate step -1

  # Create a new migration
  migrate create add_trace_records "Create trace record tables"

  # Check current version
  migrate version`)
}
