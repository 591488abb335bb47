/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "os"
    "os/signal"
    "syscall"

    "github.com/spf13/cobra"

    "github.com/TiiMonatisa/SBSA/internal/adapters/jira"
    "github.com/TiiMonatisa/SBSA/internal/domain"
    "github.com/TiiMonatisa/SBSA/internal/logger"
    "github.com/TiiMonatisa/SBSA/internal/services"
)

var runCmd = &cobra.Command{
    Use:   "run",
    Short: "Execute one backfill pass and print the report",
    RunE: func(cmd *cobra.Command, args []string) error {
        cfg := loadConfig()
        if err := cfg.Validate(); err != nil { return err }
        log := logger.New(cfg)

        jc, err := jira.NewClient(cfg, log)
        if err != nil { return domain.Configf("%v", err) }
        svc := services.NewBackfill(cfg, jc, jc, jc, log)

        ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
        defer stop()

        rep, err := svc.Run(ctx)
        if err != nil { return err }

        // Per-issue failures are part of the report, not a process failure;
        // partial success is a valid terminal state.
        if cfg.PrintJSON { return services.WriteReportJSON(os.Stdout, rep) }
        return services.WriteReportText(os.Stdout, rep)
    },
}
