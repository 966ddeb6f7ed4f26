package storage

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func gooseUpTo(ctx context.Context, db *sql.DB, dir string, version int64) error {
	return goose.UpToContext(ctx, db, dir, version)
}
