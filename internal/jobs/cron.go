/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package jobs

import (
    "context"
    "time"

    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"

    "github.com/TiiMonatisa/SBSA/internal/config"
)

type Cron struct {
    cfg    config.Config
    log    zerolog.Logger
    runner *Runner
    c      *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, runner *Runner) *Cron {
    c := cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, runner: runner, c: c}
    if cfg.BackfillCron != "" {
        if _, err := c.AddFunc(cfg.BackfillCron, cr.scheduled); err != nil {
            log.Error().Err(err).Str("spec", cfg.BackfillCron).Msg("cron: bad schedule")
        }
    }
    return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) scheduled() {
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour); defer cancel()
    cr.log.Info().Msg("cron: scheduled backfill")
    if err := cr.runner.RunOnce(ctx); err != nil { cr.log.Error().Err(err).Msg("cron: backfill failed") }
}
