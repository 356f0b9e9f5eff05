package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Setting model related methods.
	UpsertSetting(ctx context.Context, upsert *Setting) (*Setting, error)
	GetSetting(ctx context.Context, find *FindSetting) (*Setting, error)
	ListSettings(ctx context.Context, find *FindSetting) ([]*Setting, error)
	DeleteSetting(ctx context.Context, delete *DeleteSetting) error

	// EmailLog model related methods.
	CreateEmailLog(ctx context.Context, create *EmailLog) (*EmailLog, error)
	ListEmailLogs(ctx context.Context, find *FindEmailLog) ([]*EmailLog, error)
	DeleteEmailLog(ctx context.Context, delete *DeleteEmailLog) error
}
