// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package pool creates standardized database connection pools backing the
// dialect-specific meta.Source implementations that fetch fresh table
// metadata for internal/meta.CachingManager.
package pool

import (
	"context"
	sqldriver "database/sql/driver"
	"fmt"
	"net/url"
	"time"

	"database/sql"

	_ "github.com/go-sql-driver/mysql" // register driver
	_ "github.com/lib/pq"              // register driver
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Option configures pool construction, following the same functional-
// options shape used by this module's other resource constructors.
type Option func(*Controls)

// Controls holds the knobs an Option can set.
type Controls struct {
	// WaitForStartup, when set, retries a failing first ping instead of
	// returning an error, useful when the database is still coming up in
	// the same docker-compose/test harness as this process.
	WaitForStartup bool
	MaxOpenConns   int
}

// WithWaitForStartup enables retrying the initial ping against a
// not-yet-ready database instead of failing immediately.
func WithWaitForStartup() Option {
	return func(c *Controls) { c.WaitForStartup = true }
}

// WithMaxOpenConns caps the pool's open connection count.
func WithMaxOpenConns(n int) Option {
	return func(c *Controls) { c.MaxOpenConns = n }
}

func attachOptions(opts []Option) *Controls {
	c := &Controls{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pool is an open, pinged, version-checked connection pool plus the
// connect string it was opened from (used in log lines and error
// messages, never re-parsed).
type Pool struct {
	DB               *sql.DB
	ConnectionString string
	Version          string
}

// OpenMySQL opens a MySQL connection pool, retrying the initial ping when
// WithWaitForStartup is set and the failure looks like "still starting
// up" rather than a real configuration error.
func OpenMySQL(ctx context.Context, connectString string, u *url.URL, options ...Option) (*Pool, func(), error) {
	path := "/"
	if u.Path != "" {
		path = u.Path
	}
	// sql_mode=ansi lets double-quoted identifiers work the same as on Postgres.
	dsn := fmt.Sprintf("%s@tcp(%s)%s?%s", u.User.String(), u.Host, path, "sql_mode=ansi")
	ctrl := attachOptions(options)

	log.Info(connectString)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	if ctrl.MaxOpenConns > 0 {
		db.SetMaxOpenConns(ctrl.MaxOpenConns)
	}

	pool := &Pool{DB: db, ConnectionString: connectString}
	if err := pingWithRetry(ctx, db, ctrl); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&pool.Version); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "could not query version")
	}
	log.Infof("connected to mysql %s", pool.Version)

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
			return
		}
		if err := db.Close(); err != nil {
			log.WithError(errors.WithStack(err)).Warn("could not close database connection")
		}
	}()
	return pool, func() { close(stop) }, nil
}

// OpenPostgres opens a Postgres connection pool using the same
// retry/version-check shape as OpenMySQL.
func OpenPostgres(ctx context.Context, connectString string, options ...Option) (*Pool, func(), error) {
	ctrl := attachOptions(options)

	log.Info(connectString)
	db, err := sql.Open("postgres", connectString)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	if ctrl.MaxOpenConns > 0 {
		db.SetMaxOpenConns(ctrl.MaxOpenConns)
	}

	pool := &Pool{DB: db, ConnectionString: connectString}
	if err := pingWithRetry(ctx, db, ctrl); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := db.QueryRowContext(ctx, "SHOW server_version").Scan(&pool.Version); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "could not query version")
	}
	log.Infof("connected to postgres %s", pool.Version)

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
			return
		}
		if err := db.Close(); err != nil {
			log.WithError(errors.WithStack(err)).Warn("could not close database connection")
		}
	}()
	return pool, func() { close(stop) }, nil
}

func pingWithRetry(ctx context.Context, db *sql.DB, ctrl *Controls) error {
	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		if ctrl.WaitForStartup && isStartupError(err) {
			log.WithError(err).Info("waiting for database to become ready")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(10 * time.Second):
				continue
			}
		}
		return errors.Wrap(err, "could not ping the database")
	}
}

func isStartupError(err error) bool {
	return errors.Is(err, sqldriver.ErrBadConn)
}
