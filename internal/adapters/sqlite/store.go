// Package sqlite provides a SQLite-backed implementation of the session
// store port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // driver

	"github.com/earshot-labs/earshot/internal/core/domain"
	"github.com/earshot-labs/earshot/internal/core/ports"
)

// Store persists one {playlist, session} record per user. Saves run in a
// single transaction and are last-write-wins; there is no optimistic
// concurrency, matching the consistency contract the core is written against.
type Store struct {
	db *sql.DB
}

var _ ports.SessionStore = (*Store)(nil)

// NewStore opens the database and runs the schema migration.
func NewStore(storagePath string) (*Store, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return store, nil
}

// Close ensures the DB connection is closed gracefully.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context, userID string) (domain.UserState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT idx, token, url, offset_ms, title, loop, shuffle
		FROM sessions WHERE user_id = ?
	`, userID)

	var state domain.UserState
	err := row.Scan(
		&state.Session.Index,
		&state.Session.Token,
		&state.Session.URL,
		&state.Session.OffsetMs,
		&state.Session.Title,
		&state.Session.Loop,
		&state.Session.Shuffle,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserState{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserState{}, fmt.Errorf("%w: load session: %v", domain.ErrStoreUnavailable, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT token, url, title
		FROM playlist_tracks
		WHERE user_id = ?
		ORDER BY position ASC
	`, userID)
	if err != nil {
		return domain.UserState{}, fmt.Errorf("%w: load playlist: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Track
		if err := rows.Scan(&t.Token, &t.URL, &t.Title); err != nil {
			return domain.UserState{}, fmt.Errorf("%w: scan track: %v", domain.ErrStoreUnavailable, err)
		}
		state.Playlist = append(state.Playlist, t)
	}
	if err := rows.Err(); err != nil {
		return domain.UserState{}, fmt.Errorf("%w: iterate playlist: %v", domain.ErrStoreUnavailable, err)
	}

	return state, nil
}

func (s *Store) Save(ctx context.Context, userID string, state domain.UserState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	querySession := `
		INSERT INTO sessions (user_id, idx, token, url, offset_ms, title, loop, shuffle)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			idx=excluded.idx,
			token=excluded.token,
			url=excluded.url,
			offset_ms=excluded.offset_ms,
			title=excluded.title,
			loop=excluded.loop,
			shuffle=excluded.shuffle,
			updated_at=CURRENT_TIMESTAMP;
	`
	if _, err := tx.ExecContext(ctx, querySession,
		userID,
		state.Session.Index,
		state.Session.Token,
		state.Session.URL,
		state.Session.OffsetMs,
		state.Session.Title,
		state.Session.Loop,
		state.Session.Shuffle,
	); err != nil {
		return fmt.Errorf("%w: save session: %v", domain.ErrStoreUnavailable, err)
	}

	// The play order is positional, so the rows are rewritten wholesale.
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("%w: clear playlist: %v", domain.ErrStoreUnavailable, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO playlist_tracks (user_id, position, token, url, title)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %v", domain.ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	for position, t := range state.Playlist {
		if _, err := stmt.ExecContext(ctx, userID, position, t.Token, t.URL, t.Title); err != nil {
			return fmt.Errorf("%w: save track %s: %v", domain.ErrStoreUnavailable, t.Token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		user_id TEXT PRIMARY KEY,
		idx INTEGER NOT NULL,
		token TEXT NOT NULL,
		url TEXT NOT NULL,
		offset_ms INTEGER NOT NULL,
		title TEXT NOT NULL,
		loop INTEGER NOT NULL,
		shuffle INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS playlist_tracks (
		user_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		token TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		PRIMARY KEY (user_id, position)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return err
	}
	return nil
}
