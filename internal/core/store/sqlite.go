// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	video_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	body       BLOB NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (video_id, name)
)`

// SQLiteStore keeps documents in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, videoID, name string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE video_id = ? AND name = ?`, videoID, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, videoID, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	return body, nil
}

func (s *SQLiteStore) Put(ctx context.Context, videoID, name string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (video_id, name, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(video_id, name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, videoID, name, body, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Exists(ctx context.Context, videoID, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM documents WHERE video_id = ? AND name = ?`, videoID, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query document: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
