package cli

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/pressly/goose/v3"

	"github.com/promptkeep/promptkeep/internal/config"
	"github.com/promptkeep/promptkeep/internal/filex"
	"github.com/promptkeep/promptkeep/internal/logging"
	"github.com/promptkeep/promptkeep/internal/migrations"
	"github.com/promptkeep/promptkeep/internal/repositories/settings"
	"github.com/promptkeep/promptkeep/internal/repositories/tombstones"
	"github.com/promptkeep/promptkeep/internal/services"
	"github.com/promptkeep/promptkeep/internal/transport"

	_ "modernc.org/sqlite"
)

const homeDirName = ".promptkeep"

// App is the wired application behind every CLI command. It is assembled in
// the root command's PersistentPreRunE so subcommands only deal with
// services.
type App struct {
	cfgFile string

	cfg *config.Config
	db  *sql.DB
	log logging.Logger

	records     *services.RecordService
	settings    *services.SettingsService
	usage       *services.UsageService
	entitlement *services.EntitlementService
	porter      *services.PorterService
	license     *services.LicenseService
	// sync stays nil when no backup backend is configured.
	sync *services.SyncService
}

func (a *App) init(ctx context.Context) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	if cfg.DataDir == "" {
		dir, err := filex.EnsureHomeSubDir(homeDirName)
		if err != nil {
			return err
		}
		cfg.DataDir = dir
	} else if _, err := filex.EnsureDir(cfg.DataDir); err != nil {
		return err
	}
	a.cfg = cfg

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = filepath.Join(cfg.DataDir, "promptkeep.log")
	}
	a.log = logging.NewFileLogger(logPath, cfg.LogLevel)

	db, err := openDB(ctx, cfg.DBPath())
	if err != nil {
		return err
	}
	a.db = db

	settingsRepo := settings.NewSQLiteRepository(db)
	tombstoneRepo := tombstones.NewSQLiteRepository(db)

	a.records = services.NewRecordService(db, a.log)
	a.settings = services.NewSettingsService(settingsRepo)
	a.usage = services.NewUsageService(settingsRepo)
	a.entitlement = services.NewEntitlementService(settingsRepo, a.usage)
	a.porter = services.NewPorterService(db, settingsRepo, a.usage)
	a.license = services.NewLicenseService(
		services.NewHTTPVerifier(cfg.License.ServerURL), settingsRepo, a.settings, a.log)

	cloud, err := buildTransport(cfg)
	if err != nil {
		return err
	}
	if cloud != nil {
		a.sync = services.NewSyncService(
			a.records, a.porter, a.usage, settingsRepo, tombstoneRepo, cloud, a.log)
	}
	return nil
}

// close drains background work before releasing the database, so a push
// started by save still completes before the process exits.
func (a *App) close() error {
	if a.sync != nil {
		a.sync.Wait()
	}
	if a.license != nil {
		a.license.Wait()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// The modernc driver serializes writes; one connection avoids
	// SQLITE_BUSY between the CLI and background pushes.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func buildTransport(cfg *config.Config) (transport.CloudTransport, error) {
	switch cfg.Backup.Backend {
	case config.BackendS3:
		return transport.NewS3Transport(transport.S3Config{
			Bucket:          cfg.Backup.S3.Bucket,
			Key:             cfg.Backup.S3.Key,
			Region:          cfg.Backup.S3.Region,
			Endpoint:        cfg.Backup.S3.Endpoint,
			AccessKeyID:     cfg.Backup.S3.AccessKeyID,
			SecretAccessKey: cfg.Backup.S3.SecretAccessKey,
		}), nil
	case config.BackendFile:
		return transport.NewFileTransport(cfg.Backup.File), nil
	case config.BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown backup backend %q", cfg.Backup.Backend)
	}
}

func (a *App) requireSync() (*services.SyncService, error) {
	if a.sync == nil {
		return nil, fmt.Errorf("no backup backend configured, set backup.backend to %q or %q",
			config.BackendS3, config.BackendFile)
	}
	return a.sync, nil
}
