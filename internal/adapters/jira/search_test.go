/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/TiiMonatisa/SBSA/internal/config"
    "github.com/TiiMonatisa/SBSA/internal/domain"
)

func TestCloudSearchFollowsCursor(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "/rest/api/3/search/jql", r.URL.Path)
        assert.Equal(t, "status", r.URL.Query().Get("fields"))
        switch r.URL.Query().Get("nextPageToken") {
        case "":
            fmt.Fprint(w, `{"issues":[
                {"key":"SB-1","fields":{"status":{"name":"Open"}}},
                {"key":"SB-2","fields":{"status":{"name":"Done"}}}],
                "nextPageToken":"c2"}`)
        case "c2":
            fmt.Fprint(w, `{"issues":[{"key":"SB-3","fields":{"status":{"name":"Open"}}}]}`)
        default:
            t.Fatalf("unexpected cursor %q", r.URL.Query().Get("nextPageToken"))
        }
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetCloud)
    refs, next, err := c.NextPage(context.Background(), "project = SB", "")
    require.NoError(t, err)
    assert.Equal(t, []domain.IssueRef{{Key: "SB-1", Status: "Open"}, {Key: "SB-2", Status: "Done"}}, refs)
    require.Equal(t, "c2", next)

    refs, next, err = c.NextPage(context.Background(), "project = SB", next)
    require.NoError(t, err)
    assert.Equal(t, []domain.IssueRef{{Key: "SB-3", Status: "Open"}}, refs)
    assert.Empty(t, next)
}

func TestDCSearchStopsOnShortPage(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "/rest/api/2/search", r.URL.Path)
        assert.Equal(t, "2", r.URL.Query().Get("maxResults"))
        switch r.URL.Query().Get("startAt") {
        case "0":
            fmt.Fprint(w, `{"issues":[
                {"key":"SB-1","fields":{"status":{"name":"Open"}}},
                {"key":"SB-2","fields":{"status":{"name":"Open"}}}]}`)
        case "2":
            fmt.Fprint(w, `{"issues":[{"key":"SB-3","fields":{"status":{"name":"Done"}}}]}`)
        default:
            t.Fatalf("unexpected startAt %q", r.URL.Query().Get("startAt"))
        }
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetDC)
    refs, next, err := c.NextPage(context.Background(), "project = SB", "")
    require.NoError(t, err)
    require.Len(t, refs, 2)
    require.Equal(t, "2", next)

    refs, next, err = c.NextPage(context.Background(), "project = SB", next)
    require.NoError(t, err)
    require.Len(t, refs, 1)
    assert.Empty(t, next, "short page ends the scan")
}

func TestDCSearchIgnoresPhantomFullPage(t *testing.T) {
    // A final page that happens to be exactly full costs one extra empty
    // request but still terminates.
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Query().Get("startAt") == "0" {
            fmt.Fprint(w, `{"issues":[
                {"key":"SB-1","fields":{"status":{"name":"Open"}}},
                {"key":"SB-2","fields":{"status":{"name":"Open"}}}]}`)
            return
        }
        fmt.Fprint(w, `{"issues":[]}`)
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetDC)
    _, next, err := c.NextPage(context.Background(), "project = SB", "")
    require.NoError(t, err)
    refs, next, err := c.NextPage(context.Background(), "project = SB", next)
    require.NoError(t, err)
    assert.Empty(t, refs)
    assert.Empty(t, next)
}

func TestSearchSkipsIssuesWithoutKey(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        fmt.Fprint(w, `{"issues":[{"key":""},{"key":"SB-9","fields":{}}]}`)
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetCloud)
    refs, _, err := c.NextPage(context.Background(), "project = SB", "")
    require.NoError(t, err)
    require.Len(t, refs, 1)
    assert.Equal(t, "SB-9", refs[0].Key)
    assert.Empty(t, refs[0].Status)
}
