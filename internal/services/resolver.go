/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "fmt"
    "sort"

    "github.com/TiiMonatisa/SBSA/internal/domain"
)

// ResolveFirstStatus derives the status an issue held at creation time from
// its transition history. It is pure: no I/O, deterministic for a given
// input.
//
// The From side of the earliest transition is authoritative when present:
// it is the state the issue actually left first. An issue with no
// transitions never moved, so its current status is also its first. A
// transition missing its From side is malformed data; the current status
// stands in for it with a recorded warning. Only an issue with neither a
// usable history nor a current status is unresolvable.
func ResolveFirstStatus(ref domain.IssueRef, hist domain.IssueHistory) domain.FirstStatusResult {
    res := domain.FirstStatusResult{
        Key:           ref.Key,
        CurrentStatus: ref.Status,
        Note:          hist.Warning,
    }

    events := make([]domain.StatusChangeEvent, len(hist.Events))
    copy(events, hist.Events)
    sort.SliceStable(events, func(i, j int) bool {
        if !events[i].At.Equal(events[j].At) { return events[i].At.Before(events[j].At) }
        return events[i].Seq < events[j].Seq
    })
    if gap := chainGap(events); gap != "" { res.Note = joinNote(res.Note, gap) }

    if len(events) > 0 {
        first := events[0]
        res.Outcome = domain.OutcomeComputed
        switch {
        case first.From != "":
            res.FirstStatus = first.From
            res.AtCreation = true
        case ref.Status != "":
            res.FirstStatus = ref.Status
            res.AtCreation = true
            res.Note = joinNote(res.Note, "earliest transition has no from status; using current status")
        default:
            at := first.At
            res.FirstStatus = first.To
            res.ObservedAt = &at
        }
        return res
    }

    if ref.Status != "" {
        res.FirstStatus = ref.Status
        res.AtCreation = true
        res.Outcome = domain.OutcomeComputed
        return res
    }

    res.Outcome = domain.OutcomeSkipped
    res.Note = joinNote(res.Note, "no status history and no current status")
    return res
}

// chainGap reports the first place where a transition's From disagrees with
// the previous transition's To. The history is still usable; the gap is
// surfaced as a note.
func chainGap(events []domain.StatusChangeEvent) string {
    for i := 1; i < len(events); i++ {
        prev, cur := events[i-1], events[i]
        if cur.From != "" && prev.To != "" && cur.From != prev.To {
            return fmt.Sprintf("changelog gap: %q does not follow %q", cur.From, prev.To)
        }
    }
    return ""
}

func joinNote(a, b string) string {
    if a == "" { return b }
    if b == "" { return a }
    return a + "; " + b
}
