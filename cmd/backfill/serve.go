/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"

    "github.com/spf13/cobra"

    "github.com/TiiMonatisa/SBSA/internal/adapters/jira"
    "github.com/TiiMonatisa/SBSA/internal/adapters/telegram"
    "github.com/TiiMonatisa/SBSA/internal/domain"
    httpapi "github.com/TiiMonatisa/SBSA/internal/http"
    "github.com/TiiMonatisa/SBSA/internal/jobs"
    "github.com/TiiMonatisa/SBSA/internal/logger"
    "github.com/TiiMonatisa/SBSA/internal/repo"
    "github.com/TiiMonatisa/SBSA/internal/services"
)

var serveCmd = &cobra.Command{
    Use:   "serve",
    Short: "Run as a service with scheduled backfills and an admin API",
    RunE: func(cmd *cobra.Command, args []string) error {
        cfg := loadConfig()
        if err := cfg.Validate(); err != nil { return err }
        if cfg.DBDSN == "" { return domain.Configf("DB_DSN is required in serve mode") }
        log := logger.New(cfg)

        ctx, cancel := context.WithCancel(cmd.Context())
        defer cancel()

        db := repo.MustOpen(ctx, cfg, log)
        defer db.Close()
        repository := repo.NewRepository(db, log)
        if err := repository.EnsureSchema(ctx); err != nil { return err }

        jc, err := jira.NewClient(cfg, log)
        if err != nil { return domain.Configf("%v", err) }
        svc := services.NewBackfill(cfg, jc, jc, jc, log)

        var notify *telegram.Client
        if cfg.TelegramToken != "" { notify = telegram.NewClient(cfg, log) }
        runner := jobs.NewRunner(cfg, log, svc, repository, notifierOrNil(notify))

        cron := jobs.NewCron(cfg, log, runner)
        cron.Start()
        defer cron.Stop()

        router := httpapi.NewRouter(cfg, log, runner, repository)
        errCh := make(chan error, 1)
        go func() { errCh <- router.Run(cfg.HTTPAddr) }()
        log.Info().Str("addr", cfg.HTTPAddr).Str("cron", cfg.BackfillCron).Msg("serving")

        sigCh := make(chan os.Signal, 1)
        signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
        select {
        case <-sigCh:
            log.Info().Msg("shutting down")
            return nil
        case err := <-errCh:
            return err
        }
    },
}

// notifierOrNil keeps the runner's notifier interface nil when Telegram is
// not configured; a typed nil pointer would dodge the runner's nil check.
func notifierOrNil(c *telegram.Client) jobs.Notifier {
    if c == nil { return nil }
    return c
}
