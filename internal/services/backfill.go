/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "sync"
    "sync/atomic"

    "github.com/rs/zerolog"

    "github.com/TiiMonatisa/SBSA/internal/config"
    "github.com/TiiMonatisa/SBSA/internal/domain"
)

// SearchClient streams pages of issue references for a JQL query. An empty
// returned cursor means the scan is complete.
type SearchClient interface {
    NextPage(ctx context.Context, jql, pageToken string) ([]domain.IssueRef, string, error)
}

// ChangelogClient returns the full status transition history of one issue.
type ChangelogClient interface {
    GetHistory(ctx context.Context, key string) (domain.IssueHistory, error)
}

// UpdateClient writes the resolved value into the custom field, reporting
// whether a write actually happened.
type UpdateClient interface {
    SetField(ctx context.Context, key, fieldID, value string) (bool, error)
}

type Backfill struct {
    cfg       config.Config
    search    SearchClient
    changelog ChangelogClient
    update    UpdateClient
    log       zerolog.Logger
}

func NewBackfill(cfg config.Config, search SearchClient, changelog ChangelogClient, update UpdateClient, log zerolog.Logger) *Backfill {
    return &Backfill{cfg: cfg, search: search, changelog: changelog, update: update, log: log}
}

// Run executes one backfill pass: discover every issue matching the query,
// resolve each issue's first status concurrently, and write the value unless
// dry-run is set. A search failure aborts the run; per-issue failures are
// recorded in the report and do not stop the others.
func (b *Backfill) Run(ctx context.Context) (domain.BackfillReport, error) {
    refs, err := b.discover(ctx)
    if err != nil { return domain.BackfillReport{}, err }
    b.log.Info().Int("issues", len(refs)).Str("jql", b.cfg.JQL).Bool("dry_run", b.cfg.DryRun).Msg("discovery complete")

    results := make([]domain.FirstStatusResult, len(refs))
    jobs := make(chan int)
    var wg sync.WaitGroup
    var done int64
    for w := 0; w < b.cfg.Concurrency; w++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for idx := range jobs {
                results[idx] = b.processIssue(ctx, refs[idx])
                if n := atomic.AddInt64(&done, 1); n%25 == 0 {
                    b.log.Info().Int64("processed", n).Int("total", len(refs)).Msg("backfill progress")
                }
            }
        }()
    }
    for i := range refs { jobs <- i }
    close(jobs)
    wg.Wait()

    report := domain.BackfillReport{Total: len(results), Results: results}
    for _, r := range results {
        switch r.Outcome {
        case domain.OutcomeSkipped:
            report.Skipped++
        case domain.OutcomeFailed:
            report.Failed++
        }
        if r.Updated { report.Updated++ }
    }
    b.log.Info().
        Int("total", report.Total).
        Int("updated", report.Updated).
        Int("skipped", report.Skipped).
        Int("failed", report.Failed).
        Msg("backfill complete")
    return report, nil
}

// discover walks the search pages and returns the union of all issues, in
// the order first seen. Offset paging can hand the same key back twice when
// issues shift between pages, so duplicates are dropped.
func (b *Backfill) discover(ctx context.Context) ([]domain.IssueRef, error) {
    var refs []domain.IssueRef
    seen := map[string]struct{}{}
    token := ""
    for {
        page, next, err := b.search.NextPage(ctx, b.cfg.JQL, token)
        if err != nil { return nil, err }
        for _, ref := range page {
            if _, dup := seen[ref.Key]; dup { continue }
            seen[ref.Key] = struct{}{}
            refs = append(refs, ref)
        }
        if next == "" || len(page) == 0 { return refs, nil }
        token = next
    }
}

func (b *Backfill) processIssue(ctx context.Context, ref domain.IssueRef) domain.FirstStatusResult {
    hist, err := b.changelog.GetHistory(ctx, ref.Key)
    if err != nil {
        b.log.Error().Err(err).Str("key", ref.Key).Msg("changelog fetch failed")
        return domain.FirstStatusResult{Key: ref.Key, CurrentStatus: ref.Status, Outcome: domain.OutcomeFailed, Note: err.Error()}
    }
    res := ResolveFirstStatus(ref, hist)
    if res.Outcome != domain.OutcomeComputed || b.cfg.DryRun { return res }

    updated, err := b.update.SetField(ctx, ref.Key, b.cfg.CustomFieldID, res.FirstStatus)
    if err != nil {
        b.log.Error().Err(err).Str("key", ref.Key).Msg("field update failed")
        res.Outcome = domain.OutcomeFailed
        res.Note = err.Error()
        return res
    }
    res.Updated = updated
    if !updated && res.Note == "" { res.Note = "field already current" }
    return res
}
