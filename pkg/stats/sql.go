// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package stats

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS build_statistics (
	build_id INTEGER NOT NULL,
	key      TEXT    NOT NULL,
	value    REAL    NOT NULL,
	PRIMARY KEY (build_id, key)
)`

// SQLStore reads statistics from a sqlite database.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) a sqlite statistics database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.StatsError("open statistics database", err)
	}
	// a single connection keeps in-memory databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.StatsError("initialize statistics schema", err)
	}
	return &SQLStore{db: db}, nil
}

// Statistics returns every recorded value of the build.
func (s *SQLStore) Statistics(ctx context.Context, buildID int64) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM build_statistics WHERE build_id = ?`, buildID)
	if err != nil {
		return nil, errors.StatsError(fmt.Sprintf("query statistics of build %d", buildID), err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			key   string
			value float64
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.StatsError("scan statistics row", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StatsError("read statistics rows", err)
	}
	return out, nil
}

// Put upserts statistics of a build in one transaction.
func (s *SQLStore) Put(ctx context.Context, buildID int64, values map[string]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StatsError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO build_statistics (build_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (build_id, key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return errors.StatsError("prepare upsert", err)
	}
	defer stmt.Close()

	for k, v := range values {
		if _, err := stmt.ExecContext(ctx, buildID, k, v); err != nil {
			return errors.StatsError(fmt.Sprintf("store %s of build %d", k, buildID), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.StatsError("commit statistics", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
