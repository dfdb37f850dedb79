// Copyright 2025 Tom Barlow
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

// Package history records chatflow pushes in a local SQLite database so
// that repeated pushes of the same graph replace the chatflow created the
// first time instead of creating duplicates.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file name inside the config dir.
const FileName = "history.db"

// ErrNotFound is returned when no push was recorded for a graph.
var ErrNotFound = errors.New("no recorded push")

// Push is one chatflow pushed to a Flowise instance.
type Push struct {
	BaseURL      string    `json:"base_url"`
	GraphName    string    `json:"graph"`
	ChatflowID   string    `json:"chatflow_id"`
	ChatflowName string    `json:"chatflow_name"`
	FlowType     string    `json:"type"`
	PushedAt     time.Time `json:"pushed_at"`
}

// Store is a SQLite-backed push log.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	stmts := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		`CREATE TABLE IF NOT EXISTS pushes (
			base_url TEXT NOT NULL,
			graph TEXT NOT NULL,
			chatflow_id TEXT NOT NULL,
			chatflow_name TEXT NOT NULL,
			flow_type TEXT NOT NULL,
			pushed_at TEXT NOT NULL,
			PRIMARY KEY (base_url, graph)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pushes_pushed_at ON pushes(pushed_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialise history: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores p, replacing any earlier push of the same graph to the
// same instance. A zero PushedAt is set to the current time.
func (s *Store) Record(ctx context.Context, p Push) error {
	if p.BaseURL == "" || p.GraphName == "" || p.ChatflowID == "" {
		return fmt.Errorf("push needs a base URL, graph name and chatflow id")
	}
	if p.PushedAt.IsZero() {
		p.PushedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pushes (base_url, graph, chatflow_id, chatflow_name, flow_type, pushed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(base_url, graph) DO UPDATE SET
			chatflow_id = excluded.chatflow_id,
			chatflow_name = excluded.chatflow_name,
			flow_type = excluded.flow_type,
			pushed_at = excluded.pushed_at`,
		p.BaseURL, p.GraphName, p.ChatflowID, p.ChatflowName, p.FlowType,
		p.PushedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record push: %w", err)
	}
	return nil
}

// Latest returns the recorded push of graph to baseURL.
func (s *Store) Latest(ctx context.Context, baseURL, graph string) (*Push, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT base_url, graph, chatflow_id, chatflow_name, flow_type, pushed_at
		FROM pushes WHERE base_url = ? AND graph = ?`, baseURL, graph)

	p, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w for %q", ErrNotFound, graph)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read push: %w", err)
	}
	return p, nil
}

// List returns recorded pushes, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Push, error) {
	query := `SELECT base_url, graph, chatflow_id, chatflow_name, flow_type, pushed_at
		FROM pushes ORDER BY pushed_at DESC, graph`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pushes: %w", err)
	}
	defer rows.Close()

	var pushes []Push
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan push: %w", err)
		}
		pushes = append(pushes, *p)
	}
	return pushes, rows.Err()
}

// Forget removes the recorded push of graph to baseURL. It reports
// whether a record existed.
func (s *Store) Forget(ctx context.Context, baseURL, graph string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pushes WHERE base_url = ? AND graph = ?`, baseURL, graph)
	if err != nil {
		return false, fmt.Errorf("failed to forget push: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*Push, error) {
	var (
		p        Push
		pushedAt string
	)
	if err := r.Scan(&p.BaseURL, &p.GraphName, &p.ChatflowID, &p.ChatflowName, &p.FlowType, &pushedAt); err != nil {
		return nil, err
	}
	p.PushedAt, _ = time.Parse(time.RFC3339, pushedAt)
	return &p, nil
}
