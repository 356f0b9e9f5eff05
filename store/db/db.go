package db

import (
	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/internal/profile"
	"github.com/vishalnagda1/outlook-mail-responder/store"
	"github.com/vishalnagda1/outlook-mail-responder/store/db/postgres"
	"github.com/vishalnagda1/outlook-mail-responder/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// SQLite is the default for single-user deployments; PostgreSQL is
// supported for shared installations.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'sqlite' and 'postgres' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
