// Package store archives locked body profiles in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/teslashibe/go-bodyscan/internal/log"
	"github.com/teslashibe/go-bodyscan/pkg/scan"
)

// ErrNotFound is returned when no profile has the requested id.
var ErrNotFound = errors.New("store: profile not found")

// Listing limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// schema.sql defines the profiles table: one row per locked session with
// the silhouette PNG captured at lock.
//
//go:embed schema.sql
var schemaSQL string

// DB is the profile archive.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the archive at path and applies the schema.
// Use ":memory:" for a throwaway archive.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// One writer; the pipeline saves at most one profile per session.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	log.Info("profile archive ready", "path", path)
	return &DB{db}, nil
}

// SaveProfile stores p and its silhouette. Saving the same session again
// replaces the earlier row.
func (db *DB) SaveProfile(ctx context.Context, p scan.Profile, silhouettePNG []byte) error {
	const stmt = `INSERT INTO profiles (
		session_id, status, scan_time_sec, confidence, shoulder_hip, waist_hip,
		body_shape, top_fit, waist_fit, bottom_fit, tryon_ready, silhouette_ref,
		locked_unix_nanos, silhouette_png)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (session_id) DO UPDATE SET
		status = excluded.status,
		scan_time_sec = excluded.scan_time_sec,
		confidence = excluded.confidence,
		shoulder_hip = excluded.shoulder_hip,
		waist_hip = excluded.waist_hip,
		body_shape = excluded.body_shape,
		top_fit = excluded.top_fit,
		waist_fit = excluded.waist_fit,
		bottom_fit = excluded.bottom_fit,
		tryon_ready = excluded.tryon_ready,
		silhouette_ref = excluded.silhouette_ref,
		locked_unix_nanos = excluded.locked_unix_nanos,
		silhouette_png = excluded.silhouette_png`

	if p.SessionID == "" {
		return fmt.Errorf("store: save: empty session id")
	}
	_, err := db.ExecContext(ctx, stmt,
		p.SessionID, string(p.Status), p.ScanTimeSec, p.Confidence,
		p.Ratios.ShoulderHip, p.Ratios.WaistHip, string(p.BodyShape),
		p.FitProfile.TopFit, p.FitProfile.WaistFit, p.FitProfile.BottomFit,
		p.TryOnReady, p.SilhouetteRef, p.LockedAt.UnixNano(), silhouettePNG,
	)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", p.SessionID, err)
	}
	return nil
}

const profileColumns = `session_id, status, scan_time_sec, confidence, shoulder_hip, waist_hip,
	body_shape, top_fit, waist_fit, bottom_fit, tryon_ready, silhouette_ref, locked_unix_nanos`

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (scan.Profile, error) {
	var (
		p      scan.Profile
		status string
		shape  string
		nanos  int64
	)
	err := row.Scan(
		&p.SessionID, &status, &p.ScanTimeSec, &p.Confidence,
		&p.Ratios.ShoulderHip, &p.Ratios.WaistHip, &shape,
		&p.FitProfile.TopFit, &p.FitProfile.WaistFit, &p.FitProfile.BottomFit,
		&p.TryOnReady, &p.SilhouetteRef, &nanos,
	)
	if err != nil {
		return scan.Profile{}, err
	}
	p.Status = scan.State(status)
	p.BodyShape = scan.BodyShape(shape)
	p.LockedAt = time.Unix(0, nanos).UTC()
	return p, nil
}

// Profile returns the profile stored for id.
func (db *DB) Profile(ctx context.Context, id string) (scan.Profile, error) {
	row := db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE session_id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return scan.Profile{}, ErrNotFound
	}
	if err != nil {
		return scan.Profile{}, fmt.Errorf("store: profile %s: %w", id, err)
	}
	return p, nil
}

// ListProfiles returns up to limit profiles, most recently locked first.
// A non-positive limit means DefaultListLimit; limits above MaxListLimit
// are capped.
func (db *DB) ListProfiles(ctx context.Context, limit int) ([]scan.Profile, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY locked_unix_nanos DESC, session_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := make([]scan.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// Silhouette returns the PNG saved with profile id. A profile saved without
// a silhouette yields ErrNotFound.
func (db *DB) Silhouette(ctx context.Context, id string) ([]byte, error) {
	var png []byte
	err := db.QueryRowContext(ctx, `SELECT silhouette_png FROM profiles WHERE session_id = ?`, id).Scan(&png)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && len(png) == 0) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: silhouette %s: %w", id, err)
	}
	return png, nil
}

// DeleteProfile removes the profile stored for id.
func (db *DB) DeleteProfile(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM profiles WHERE session_id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
