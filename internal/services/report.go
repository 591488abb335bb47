/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "encoding/json"
    "fmt"
    "io"
    "time"

    "github.com/TiiMonatisa/SBSA/internal/domain"
)

// WriteReportJSON emits the full machine-readable report.
func WriteReportJSON(w io.Writer, rep domain.BackfillReport) error {
    enc := json.NewEncoder(w)
    enc.SetIndent("", "  ")
    return enc.Encode(rep)
}

// WriteReportText renders a per-issue summary followed by the totals line.
func WriteReportText(w io.Writer, rep domain.BackfillReport) error {
    for _, r := range rep.Results {
        line := fmt.Sprintf("%-12s %-10s %-20s", r.Key, r.Outcome, r.FirstStatus)
        if r.ObservedAt != nil { line += " observed=" + r.ObservedAt.Format(time.RFC3339) }
        if r.AtCreation { line += " at-creation" }
        if r.Updated { line += " updated" }
        if r.Note != "" { line += " (" + r.Note + ")" }
        if _, err := fmt.Fprintln(w, line); err != nil { return err }
    }
    _, err := fmt.Fprintf(w, "total=%d updated=%d skipped=%d failed=%d\n",
        rep.Total, rep.Updated, rep.Skipped, rep.Failed)
    return err
}

// Summary is the one-line form used in logs and notifications.
func Summary(rep domain.BackfillReport) string {
    return fmt.Sprintf("backfill: %d issues, %d updated, %d skipped, %d failed",
        rep.Total, rep.Updated, rep.Skipped, rep.Failed)
}
