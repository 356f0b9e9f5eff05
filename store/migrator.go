package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/internal/version"
)

// Migration System Overview:
//
// Schema version is stored in the setting table under "schema_version".
//
// Migration Flow:
// 1. preMigrate: if the DB is uninitialized, apply LATEST.sql and stamp
//    the current schema version.
// 2. Migrate (prod mode): apply incremental migrations from the stored
//    version up to the target version.
//
// Migration Files:
// - Location: store/migration/{driver}/{version}/NN__description.sql
// - LATEST.sql: full schema for new installations.
// - Files sort lexicographically and apply in order inside one
//   transaction.

//go:embed migration
var migrationFS embed.FS

const (
	// MigrateFileNameSplit separates the patch number from the
	// description in a migration file name, e.g. "01__create_table.sql".
	MigrateFileNameSplit = "__"
	// LatestSchemaFileName is the full-schema file applied to fresh
	// installations.
	LatestSchemaFileName = "LATEST.sql"

	// defaultSchemaVersion stands in when no version was ever stamped.
	defaultSchemaVersion = "0.0.0"

	modeProd = "prod"
)

func getSchemaVersionOrDefault(schemaVersion string) string {
	if schemaVersion == "" {
		return defaultSchemaVersion
	}
	return schemaVersion
}

func isVersionEmpty(schemaVersion string) bool {
	return schemaVersion == "" || schemaVersion == defaultSchemaVersion
}

// shouldApplyMigration reports whether a migration file's version lies
// between the stored DB version and the target version.
func shouldApplyMigration(fileVersion, currentDBVersion, targetVersion string) bool {
	currentDBVersionSafe := getSchemaVersionOrDefault(currentDBVersion)
	return version.IsVersionGreaterThan(fileVersion, currentDBVersionSafe) &&
		version.IsVersionGreaterOrEqualThan(targetVersion, fileVersion)
}

// Migrate brings the database schema up to the current version.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.preMigrate(ctx); err != nil {
		return errors.Wrap(err, "failed to pre-migrate")
	}

	if s.profile.Mode != modeProd {
		return nil
	}

	storedVersion, err := s.getStoredSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get stored schema version")
	}
	targetVersion := version.GetSchemaVersion(s.profile.Mode)

	if !isVersionEmpty(storedVersion) && version.IsVersionGreaterThan(storedVersion, targetVersion) {
		slog.Error("cannot downgrade schema version",
			slog.String("databaseVersion", storedVersion),
			slog.String("currentVersion", targetVersion),
		)
		return errors.Errorf("cannot downgrade schema version from %s to %s", storedVersion, targetVersion)
	}

	if isVersionEmpty(storedVersion) || version.IsVersionGreaterThan(targetVersion, storedVersion) {
		if err := s.applyMigrations(ctx, storedVersion, targetVersion); err != nil {
			return errors.Wrap(err, "failed to apply migrations")
		}
	}
	return nil
}

// preMigrate initializes an empty database from LATEST.sql.
func (s *Store) preMigrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	filePath := s.getMigrationBasePath() + LatestSchemaFileName
	bytes, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Errorf("failed to read latest schema file: %s", err)
	}

	tx, err := s.driver.GetDB().Begin()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	slog.Info("initializing new database with latest schema", slog.String("file", filePath))
	if err := s.execute(ctx, tx, string(bytes)); err != nil {
		return errors.Errorf("failed to execute SQL file %s, err %s", filePath, err)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	schemaVersion := version.GetSchemaVersion(s.profile.Mode)
	if err := s.updateStoredSchemaVersion(ctx, schemaVersion); err != nil {
		return errors.Wrap(err, "failed to update schema version")
	}
	slog.Info("database initialized successfully", slog.String("schemaVersion", schemaVersion))
	return nil
}

// applyMigrations applies every pending migration file inside one
// transaction.
func (s *Store) applyMigrations(ctx context.Context, currentSchemaVersion, targetSchemaVersion string) error {
	filePaths, err := fs.Glob(migrationFS, fmt.Sprintf("%s*/*.sql", s.getMigrationBasePath()))
	if err != nil {
		return errors.Wrap(err, "failed to read migration files")
	}
	sort.Strings(filePaths)

	tx, err := s.driver.GetDB().Begin()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	slog.Info("start migration",
		slog.String("currentSchemaVersion", getSchemaVersionOrDefault(currentSchemaVersion)),
		slog.String("targetSchemaVersion", targetSchemaVersion))

	migrationsApplied := 0
	for _, filePath := range filePaths {
		fileSchemaVersion, err := s.getSchemaVersionOfMigrateScript(filePath)
		if err != nil {
			return errors.Wrap(err, "failed to get schema version of migrate script")
		}
		if !shouldApplyMigration(fileSchemaVersion, currentSchemaVersion, targetSchemaVersion) {
			continue
		}

		slog.Info("applying migration",
			slog.String("file", filePath),
			slog.String("version", fileSchemaVersion))

		bytes, err := migrationFS.ReadFile(filePath)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration file: %s", filePath)
		}
		if err := s.execute(ctx, tx, string(bytes)); err != nil {
			return errors.Wrapf(err, "failed to execute migration %s", filePath)
		}
		migrationsApplied++
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit migration transaction")
	}
	slog.Info("migration completed", slog.Int("migrationsApplied", migrationsApplied))

	return s.updateStoredSchemaVersion(ctx, targetSchemaVersion)
}

func (s *Store) getMigrationBasePath() string {
	return fmt.Sprintf("migration/%s/", s.profile.Driver)
}

// getSchemaVersionOfMigrateScript derives the schema version from a
// migration file path, e.g. "migration/sqlite/0.2/01__x.sql" -> "0.2.1".
func (s *Store) getSchemaVersionOfMigrateScript(filePath string) (string, error) {
	if strings.HasSuffix(filePath, LatestSchemaFileName) {
		return version.GetSchemaVersion(s.profile.Mode), nil
	}

	normalizedPath := strings.ReplaceAll(filePath, "\\", "/")
	elements := strings.Split(normalizedPath, "/")
	if len(elements) < 2 {
		return "", errors.Errorf("invalid migration file path: %s", filePath)
	}
	minorVersion := elements[len(elements)-2]
	rawPatch := strings.Split(elements[len(elements)-1], MigrateFileNameSplit)[0]
	patch := strings.TrimLeft(rawPatch, "0")
	if patch == "" {
		patch = "0"
	}
	return fmt.Sprintf("%s.%s", minorVersion, patch), nil
}

// execute runs a multi-statement SQL string inside the transaction.
func (*Store) execute(ctx context.Context, tx *sql.Tx, stmt string) error {
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to execute statement")
	}
	return nil
}

func (s *Store) getStoredSchemaVersion(ctx context.Context) (string, error) {
	name := SettingSchemaVersion
	setting, err := s.driver.GetSetting(ctx, &FindSetting{Name: &name})
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}

func (s *Store) updateStoredSchemaVersion(ctx context.Context, schemaVersion string) error {
	_, err := s.UpsertSetting(ctx, &Setting{
		Name:  SettingSchemaVersion,
		Value: schemaVersion,
	})
	return err
}
