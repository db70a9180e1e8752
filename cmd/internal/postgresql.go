package internal

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/envvar"
)

// NewPostgreSQL instantiates the PostgreSQL database using configuration defined in environment variables.
func NewPostgreSQL(conf *envvar.Configuration) (*pgxpool.Pool, error) {
	var getErr error

	get := func(v, def string) string {
		res, err := conf.GetDefault(v, def)
		if err != nil && getErr == nil {
			getErr = internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get %s", v)
		}

		return res
	}

	databaseHost := get("DATABASE_HOST", "localhost")
	databasePort := get("DATABASE_PORT", "5432")
	databaseUsername := get("DATABASE_USERNAME", "")
	databasePassword := get("DATABASE_PASSWORD", "")
	databaseName := get("DATABASE_NAME", "")
	databaseSSLMode := get("DATABASE_SSLMODE", "disable")

	if getErr != nil {
		return nil, getErr
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(databaseUsername, databasePassword),
		Host:   fmt.Sprintf("%s:%s", databaseHost, databasePort),
		Path:   databaseName,
	}

	q := dsn.Query()
	q.Add("sslmode", databaseSSLMode)

	dsn.RawQuery = q.Encode()

	pool, err := pgxpool.New(context.Background(), dsn.String())
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pgxpool.New")
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "db.Ping")
	}

	return pool, nil
}
