/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "errors"
    "net/http"

    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"

    "github.com/TiiMonatisa/SBSA/internal/config"
    "github.com/TiiMonatisa/SBSA/internal/jobs"
    "github.com/TiiMonatisa/SBSA/internal/repo"
)

type runner interface {
    RunOnce(ctx context.Context) error
}

type runStore interface {
    GetLastRun(ctx context.Context) (*repo.LastRun, error)
}

type Handlers struct {
    cfg    config.Config
    log    zerolog.Logger
    runner runner
    store  runStore
}

func NewHandlers(cfg config.Config, log zerolog.Logger, r runner, store runStore) *Handlers {
    return &Handlers{cfg: cfg, log: log, runner: r, store: store}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
    lr, err := h.store.GetLastRun(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunNow(c *gin.Context) {
    // Detached from the request context so a closed connection does not
    // cancel the backfill mid-flight.
    go func() {
        if err := h.runner.RunOnce(context.Background()); err != nil && !errors.Is(err, jobs.ErrAlreadyRunning) {
            h.log.Error().Err(err).Msg("admin-triggered backfill failed")
        }
    }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
