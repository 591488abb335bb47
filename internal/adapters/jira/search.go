/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "fmt"
    "net/http"
    "net/url"
    "strconv"

    "github.com/TiiMonatisa/SBSA/internal/config"
    "github.com/TiiMonatisa/SBSA/internal/domain"
)

type searchIssue struct {
    Key    string `json:"key"`
    Fields struct {
        Status *struct {
            Name string `json:"name"`
        } `json:"status"`
    } `json:"fields"`
}

type cloudSearchPage struct {
    Issues        []searchIssue `json:"issues"`
    NextPageToken string        `json:"nextPageToken"`
}

type dcSearchPage struct {
    Issues []searchIssue `json:"issues"`
}

// NextPage fetches one page of issue keys for the query. pageToken is the
// opaque cursor from the previous call, empty on the first page. An empty
// returned cursor means the result set is exhausted.
//
// Cloud uses the enhanced search endpoint and its server-side cursor. Data
// Center has no cursor, so the token encodes the startAt offset, and a page
// shorter than the requested size ends the scan.
func (c *Client) NextPage(ctx context.Context, jql, pageToken string) ([]domain.IssueRef, string, error) {
    if c.target == config.TargetDC { return c.nextPageDC(ctx, jql, pageToken) }
    return c.nextPageCloud(ctx, jql, pageToken)
}

func (c *Client) nextPageCloud(ctx context.Context, jql, pageToken string) ([]domain.IssueRef, string, error) {
    q := url.Values{}
    q.Set("jql", jql)
    q.Set("maxResults", strconv.Itoa(c.pageSize))
    q.Set("fields", "status")
    if pageToken != "" { q.Set("nextPageToken", pageToken) }
    var page cloudSearchPage
    if err := c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/api/3/search/jql", q), nil, &page); err != nil {
        return nil, "", &domain.SearchError{Status: statusOf(err), Err: err}
    }
    refs := toRefs(page.Issues)
    if len(refs) == 0 { return refs, "", nil }
    return refs, page.NextPageToken, nil
}

func (c *Client) nextPageDC(ctx context.Context, jql, pageToken string) ([]domain.IssueRef, string, error) {
    start := 0
    if pageToken != "" {
        n, err := strconv.Atoi(pageToken)
        if err != nil || n < 0 {
            return nil, "", &domain.SearchError{Err: fmt.Errorf("bad page token %q", pageToken)}
        }
        start = n
    }
    q := url.Values{}
    q.Set("jql", jql)
    q.Set("startAt", strconv.Itoa(start))
    q.Set("maxResults", strconv.Itoa(c.pageSize))
    q.Set("fields", "status")
    var page dcSearchPage
    if err := c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/api/2/search", q), nil, &page); err != nil {
        return nil, "", &domain.SearchError{Status: statusOf(err), Err: err}
    }
    refs := toRefs(page.Issues)
    if len(refs) < c.pageSize { return refs, "", nil }
    return refs, strconv.Itoa(start + len(refs)), nil
}

func toRefs(issues []searchIssue) []domain.IssueRef {
    refs := make([]domain.IssueRef, 0, len(issues))
    for _, is := range issues {
        if is.Key == "" { continue }
        ref := domain.IssueRef{Key: is.Key}
        if is.Fields.Status != nil { ref.Status = is.Fields.Status.Name }
        refs = append(refs, ref)
    }
    return refs
}
