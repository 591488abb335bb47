/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package jobs

import (
    "context"
    "errors"

    "github.com/rs/zerolog"

    "github.com/TiiMonatisa/SBSA/internal/config"
    "github.com/TiiMonatisa/SBSA/internal/domain"
    "github.com/TiiMonatisa/SBSA/internal/services"
)

// lockKey guards against two backfills touching the same issues at once.
const lockKey int64 = 733101

var ErrAlreadyRunning = errors.New("backfill already running")

type backfill interface {
    Run(ctx context.Context) (domain.BackfillReport, error)
}

type runStore interface {
    TryAdvisoryLock(ctx context.Context, key int64) (bool, error)
    AdvisoryUnlock(ctx context.Context, key int64) error
    StartRun(ctx context.Context, jql string, dryRun bool) (int64, error)
    FinishRun(ctx context.Context, id int64, rep domain.BackfillReport, runErr error) error
}

type Notifier interface {
    Broadcast(ctx context.Context, text string) error
}

// Runner executes one backfill under the advisory lock, recording the run in
// Postgres and broadcasting the outcome. Both the cron schedule and the admin
// endpoint go through here.
type Runner struct {
    cfg    config.Config
    log    zerolog.Logger
    svc    backfill
    store  runStore
    notify Notifier
}

func NewRunner(cfg config.Config, log zerolog.Logger, svc backfill, store runStore, n Notifier) *Runner {
    return &Runner{cfg: cfg, log: log, svc: svc, store: store, notify: n}
}

func (r *Runner) RunOnce(ctx context.Context) error {
    ok, err := r.store.TryAdvisoryLock(ctx, lockKey)
    if err != nil { return err }
    if !ok {
        r.log.Info().Msg("backfill already running elsewhere")
        return ErrAlreadyRunning
    }
    defer func() { _ = r.store.AdvisoryUnlock(context.Background(), lockKey) }()

    runID, err := r.store.StartRun(ctx, r.cfg.JQL, r.cfg.DryRun)
    if err != nil { return err }

    rep, runErr := r.svc.Run(ctx)
    if err := r.store.FinishRun(ctx, runID, rep, runErr); err != nil {
        r.log.Error().Err(err).Int64("run_id", runID).Msg("failed to record run")
    }
    if r.notify != nil {
        msg := services.Summary(rep)
        if runErr != nil { msg = "backfill failed: " + runErr.Error() }
        if err := r.notify.Broadcast(ctx, msg); err != nil {
            r.log.Error().Err(err).Msg("notification failed")
        }
    }
    return runErr
}
