package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/config"
	"github.com/stemsi/exstem-enroll/internal/database"
)

// OpenStudentStore builds the store named by cfg.StoreDriver. The pool is
// non-nil only for the postgres driver; the caller closes it.
func OpenStudentStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (StudentStore, *pgxpool.Pool, error) {
	switch cfg.StoreDriver {
	case "", "xlsx":
		store, err := NewXLSXStudentRepository(cfg.DataFile, log)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.MaxDBConns, log)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStudentRepository(pool), pool, nil
	case "memory":
		return NewMemoryStudentRepository(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
