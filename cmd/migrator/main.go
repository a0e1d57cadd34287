package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/niksmo/shopcore/config"
	"github.com/spf13/pflag"
)

const (
	dsnFlag           = "dsn"
	configFlag        = "config"
	migrationPathFlag = "migrations-path"
	downFlag          = "down"
)

type flags struct {
	dsn            string
	configPath     string
	migrationsPath string
	down           bool
}

func main() {
	f := parseFlags()
	dsn, err := resolveDSN(f, config.LoadFile)
	if err != nil {
		slog.Error("invalid arguments", "err", err)
		fallDown()
	}
	makeMigrations(databaseURL(dsn), f.migrationsPath, f.down)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func parseFlags() flags {
	var f flags
	pflag.StringVarP(&f.dsn, dsnFlag, "d", "", "postgres DSN")
	pflag.StringVarP(&f.configPath, configFlag, "c", "",
		"shop config file, its storage.sql_db is used without --dsn")
	pflag.StringVarP(&f.migrationsPath, migrationPathFlag, "m", "",
		"migrations dir")
	pflag.BoolVar(&f.down, downFlag, false, "roll back all migrations")
	pflag.Parse()
	return f
}

// resolveDSN prefers --dsn over the storage.sql_db of the config file.
func resolveDSN(
	f flags, loadConfig func(path string) (config.Config, error),
) (string, error) {
	var errs []error

	if f.migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	dsn := f.dsn
	switch {
	case dsn != "":
	case f.configPath != "":
		cfg, err := loadConfig(f.configPath)
		if err != nil {
			errs = append(errs, fmt.Errorf("--%s flag: %w", configFlag, err))
			break
		}
		if dsn = cfg.Storage.SQLDB; dsn == "" {
			errs = append(errs, errors.New("storage.sql_db: not set in config"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"--%s or --%s flag: required", dsnFlag, configFlag,
		))
	}

	return dsn, errors.Join(errs...)
}

// databaseURL accepts a postgres:// DSN or a bare host path and returns
// the pgx5:// url of the migrate driver.
func databaseURL(storagePath string) string {
	for _, scheme := range []string{"postgres://", "postgresql://", "pgx5://"} {
		if rest, ok := strings.CutPrefix(storagePath, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return "pgx5://" + storagePath
}

func makeMigrations(dbURL, migrationsPath string, down bool) {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dbURL)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}

	m.Log = NewMigrationLogger()

	apply, action := m.Up, "applied"
	if down {
		apply, action = m.Down, "rolled back"
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	m.Log.Printf("migrations %s", action)
}

func fallDown() {
	os.Exit(2)
}
