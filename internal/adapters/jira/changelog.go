/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "fmt"
    "net/http"
    "net/url"
    "sort"
    "strconv"
    "strings"
    "time"

    "github.com/TiiMonatisa/SBSA/internal/config"
    "github.com/TiiMonatisa/SBSA/internal/domain"
)

// Jira never hands out pages this deep in practice; the cap only guards
// against a server that keeps paging forever.
const maxChangelogPages = 100

type changelogItem struct {
    Field      string `json:"field"`
    FieldID    string `json:"fieldId"`
    FromString string `json:"fromString"`
    ToString   string `json:"toString"`
}

func (it changelogItem) isStatus() bool {
    return strings.EqualFold(it.Field, "status") || strings.EqualFold(it.FieldID, "status")
}

type changelogHistory struct {
    Created string          `json:"created"`
    Items   []changelogItem `json:"items"`
}

type changelogPage struct {
    StartAt    int                `json:"startAt"`
    MaxResults int                `json:"maxResults"`
    Total      int                `json:"total"`
    IsLast     bool               `json:"isLast"`
    Values     []changelogHistory `json:"values"`
    Histories  []changelogHistory `json:"histories"`
}

func (p changelogPage) entries() []changelogHistory {
    if len(p.Values) > 0 { return p.Values }
    return p.Histories
}

type issueWithChangelog struct {
    Changelog changelogPage `json:"changelog"`
}

// GetHistory returns every status transition of the issue in changelog
// order. CreationStatus is the status the issue held before its first
// transition, empty when the changelog records none.
func (c *Client) GetHistory(ctx context.Context, key string) (domain.IssueHistory, error) {
    hist := domain.IssueHistory{Key: key}
    var entries []changelogHistory
    var warning string
    var err error
    if c.target == config.TargetDC {
        entries, warning, err = c.historiesDC(ctx, key)
    } else {
        entries, warning, err = c.historiesCloud(ctx, key)
    }
    if err != nil { return hist, &domain.ChangelogError{Key: key, Err: err} }

    for _, h := range entries {
        at, perr := parseJiraTime(h.Created)
        if perr != nil { continue }
        for _, it := range h.Items {
            if !it.isStatus() { continue }
            hist.Events = append(hist.Events, domain.StatusChangeEvent{
                At:   at,
                From: it.FromString,
                To:   it.ToString,
                Seq:  len(hist.Events),
            })
        }
    }
    sort.SliceStable(hist.Events, func(i, j int) bool {
        a, b := hist.Events[i], hist.Events[j]
        if !a.At.Equal(b.At) { return a.At.Before(b.At) }
        return a.Seq < b.Seq
    })
    if len(hist.Events) > 0 { hist.CreationStatus = hist.Events[0].From }
    hist.Warning = warning
    return hist, nil
}

func (c *Client) historiesCloud(ctx context.Context, key string) ([]changelogHistory, string, error) {
    var all []changelogHistory
    startAt := 0
    for page := 0; page < maxChangelogPages; page++ {
        q := url.Values{}
        q.Set("startAt", strconv.Itoa(startAt))
        q.Set("maxResults", "100")
        u := c.apiURL("/rest/api/2/issue/"+url.PathEscape(key)+"/changelog", q)
        var p changelogPage
        if err := c.doJSON(ctx, http.MethodGet, u, nil, &p); err != nil { return nil, "", err }
        got := p.entries()
        all = append(all, got...)
        if p.IsLast || len(got) == 0 { return all, "", nil }
        if p.Total > 0 && startAt+len(got) >= p.Total { return all, "", nil }
        startAt += len(got)
    }
    return all, fmt.Sprintf("changelog truncated after %d pages", maxChangelogPages), nil
}

// Data Center ships the first changelog page inline on the issue; any
// remainder is paged through the standalone changelog resource.
func (c *Client) historiesDC(ctx context.Context, key string) ([]changelogHistory, string, error) {
    q := url.Values{}
    q.Set("expand", "changelog")
    q.Set("fields", "status")
    u := c.apiURL("/rest/api/2/issue/"+url.PathEscape(key), q)
    var issue issueWithChangelog
    if err := c.doJSON(ctx, http.MethodGet, u, nil, &issue); err != nil { return nil, "", err }
    all := issue.Changelog.entries()
    total := issue.Changelog.Total
    startAt := len(all)
    for page := 0; total > startAt; page++ {
        if page >= maxChangelogPages {
            return all, fmt.Sprintf("changelog truncated after %d pages", maxChangelogPages), nil
        }
        rq := url.Values{}
        rq.Set("startAt", strconv.Itoa(startAt))
        rq.Set("maxResults", "100")
        ru := c.apiURL("/rest/api/2/issue/"+url.PathEscape(key)+"/changelog", rq)
        var p changelogPage
        if err := c.doJSON(ctx, http.MethodGet, ru, nil, &p); err != nil { return nil, "", err }
        got := p.entries()
        if len(got) == 0 { break }
        all = append(all, got...)
        startAt += len(got)
    }
    return all, "", nil
}

var jiraTimeLayouts = []string{
    "2006-01-02T15:04:05.000-0700",
    "2006-01-02T15:04:05.000Z0700",
    time.RFC3339Nano,
    time.RFC3339,
}

func parseJiraTime(s string) (time.Time, error) {
    for _, layout := range jiraTimeLayouts {
        if t, err := time.Parse(layout, s); err == nil { return t.UTC(), nil }
    }
    return time.Time{}, fmt.Errorf("jira: unparseable timestamp %q", s)
}
