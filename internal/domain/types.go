package domain

import "time"

// IssueRef is one discovered issue: its key plus the current status name
// returned by the search endpoint. The current status is threaded through
// to changelog processing as the creation-status fallback.
type IssueRef struct {
    Key    string
    Status string
}

// StatusChangeEvent is a single status transition extracted from an issue
// changelog entry. Seq is the position of the item in the source changelog
// and is the only tie-break when timestamps collide.
type StatusChangeEvent struct {
    At   time.Time
    From string
    To   string
    Seq  int
}

// IssueHistory is an issue's full set of status transitions. Events are in
// source order; the resolver sorts them. CreationStatus is the status the
// issue held at creation, inferred from the earliest transition's From value;
// empty when the changelog records no transitions. Warning records a
// non-fatal data problem found while building the history.
type IssueHistory struct {
    Key            string
    CreationStatus string
    Events         []StatusChangeEvent
    Warning        string
}

type Outcome string

const (
    OutcomeComputed Outcome = "computed"
    OutcomeSkipped  Outcome = "skipped"
    OutcomeFailed   Outcome = "failed"
)

// FirstStatusResult is the per-issue verdict. A nil ObservedAt means the
// first status was held at creation; otherwise it is the timestamp the
// status was first entered.
type FirstStatusResult struct {
    Key           string     `json:"key"`
    FirstStatus   string     `json:"first_status"`
    CurrentStatus string     `json:"current_status,omitempty"`
    ObservedAt    *time.Time `json:"observed_at,omitempty"`
    AtCreation    bool       `json:"at_creation"`
    Outcome       Outcome    `json:"outcome"`
    Updated       bool       `json:"updated"`
    Note          string     `json:"note,omitempty"`
}

type BackfillReport struct {
    Total   int                 `json:"total"`
    Updated int                 `json:"updated"`
    Skipped int                 `json:"skipped"`
    Failed  int                 `json:"failed"`
    Results []FirstStatusResult `json:"results"`
}
