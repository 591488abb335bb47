/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package repo

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"

    "github.com/TiiMonatisa/SBSA/internal/config"
    "github.com/TiiMonatisa/SBSA/internal/domain"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

// EnsureSchema creates the run-history table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
    const q = `
        CREATE TABLE IF NOT EXISTS backfill_runs (
            id          BIGSERIAL PRIMARY KEY,
            started_at  TIMESTAMPTZ NOT NULL,
            finished_at TIMESTAMPTZ,
            jql         TEXT NOT NULL,
            dry_run     BOOLEAN NOT NULL DEFAULT false,
            total       INT NOT NULL DEFAULT 0,
            updated     INT NOT NULL DEFAULT 0,
            skipped     INT NOT NULL DEFAULT 0,
            failed      INT NOT NULL DEFAULT 0,
            report      JSONB,
            success     BOOLEAN NOT NULL DEFAULT false,
            error       TEXT NOT NULL DEFAULT ''
        )`
    _, err := r.db.Pool.Exec(ctx, q)
    return err
}

// Only one backfill may run at a time across all instances sharing the
// database.
func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

// Run history

func (r *Repository) StartRun(ctx context.Context, jql string, dryRun bool) (int64, error) {
    const q = `INSERT INTO backfill_runs(started_at, jql, dry_run) VALUES(now(), $1, $2) RETURNING id`
    var id int64
    if err := r.db.Pool.QueryRow(ctx, q, jql, dryRun).Scan(&id); err != nil { return 0, err }
    return id, nil
}

func (r *Repository) FinishRun(ctx context.Context, id int64, rep domain.BackfillReport, runErr error) error {
    reportJSON, err := json.Marshal(rep)
    if err != nil { return err }
    errStr := ""
    if runErr != nil { errStr = runErr.Error() }
    const q = `UPDATE backfill_runs SET finished_at=now(), total=$2, updated=$3, skipped=$4, failed=$5,
        report=$6, success=$7, error=$8 WHERE id=$1`
    _, err = r.db.Pool.Exec(ctx, q, id, rep.Total, rep.Updated, rep.Skipped, rep.Failed,
        reportJSON, runErr == nil, errStr)
    return err
}

type LastRun struct {
    StartedAt  time.Time  `json:"started_at"`
    FinishedAt *time.Time `json:"finished_at"`
    JQL        string     `json:"jql"`
    DryRun     bool       `json:"dry_run"`
    Total      int        `json:"total"`
    Updated    int        `json:"updated"`
    Skipped    int        `json:"skipped"`
    Failed     int        `json:"failed"`
    Success    bool       `json:"success"`
    Error      string     `json:"error"`
}

func (r *Repository) GetLastRun(ctx context.Context) (*LastRun, error) {
    const q = `SELECT started_at, finished_at, jql, dry_run,
        coalesce(total,0), coalesce(updated,0), coalesce(skipped,0), coalesce(failed,0),
        coalesce(success,false), coalesce(error,'')
        FROM backfill_runs ORDER BY id DESC LIMIT 1`
    row := r.db.Pool.QueryRow(ctx, q)
    lr := &LastRun{}
    if err := row.Scan(&lr.StartedAt, &lr.FinishedAt, &lr.JQL, &lr.DryRun,
        &lr.Total, &lr.Updated, &lr.Skipped, &lr.Failed, &lr.Success, &lr.Error); err != nil {
        return nil, err
    }
    return lr, nil
}
