/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/TiiMonatisa/SBSA/internal/config"
    "github.com/TiiMonatisa/SBSA/internal/domain"
)

func testClient(t *testing.T, baseURL, target string) *Client {
    t.Helper()
    cfg := config.Config{
        Target:      target,
        HTTPTimeout: 5 * time.Second,
        PageSize:    2,
    }
    if target == config.TargetDC {
        cfg.DCBaseURL = baseURL
        cfg.DCToken = "pat-token"
    } else {
        cfg.CloudBaseURL = baseURL
        cfg.CloudEmail = "bot@example.com"
        cfg.CloudAPIToken = "api-token"
    }
    c, err := NewClient(cfg, zerolog.Nop())
    require.NoError(t, err)
    c.retryBase = time.Millisecond
    return c
}

func TestRateLimitHonorsRetryAfter(t *testing.T) {
    hits := 0
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        hits++
        if hits < 3 {
            w.Header().Set("Retry-After", "0")
            w.WriteHeader(http.StatusTooManyRequests)
            return
        }
        w.Write([]byte(`{"issues":[]}`))
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetCloud)
    refs, next, err := c.NextPage(context.Background(), "project = SB", "")
    require.NoError(t, err)
    assert.Empty(t, refs)
    assert.Empty(t, next)
    assert.Equal(t, 3, hits)
}

func TestRateLimitGivesUp(t *testing.T) {
    hits := 0
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        hits++
        w.Header().Set("Retry-After", "0")
        w.WriteHeader(http.StatusTooManyRequests)
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetCloud)
    _, _, err := c.NextPage(context.Background(), "project = SB", "")
    require.Error(t, err)
    var se *domain.SearchError
    require.True(t, errors.As(err, &se))
    assert.Equal(t, http.StatusTooManyRequests, se.Status)
    assert.Equal(t, maxRateLimitAttempts, hits)
}

func TestTransientRetriesThenSucceeds(t *testing.T) {
    hits := 0
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        hits++
        if hits == 1 {
            w.WriteHeader(http.StatusServiceUnavailable)
            return
        }
        w.Write([]byte(`{"issues":[]}`))
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetCloud)
    _, _, err := c.NextPage(context.Background(), "project = SB", "")
    require.NoError(t, err)
    assert.Equal(t, 2, hits)
}

func TestClientErrorFailsImmediately(t *testing.T) {
    hits := 0
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        hits++
        w.WriteHeader(http.StatusBadRequest)
        w.Write([]byte(`{"errorMessages":["bad jql"]}`))
    }))
    defer srv.Close()

    c := testClient(t, srv.URL, config.TargetCloud)
    _, _, err := c.NextPage(context.Background(), "project =", "")
    require.Error(t, err)
    var se *domain.SearchError
    require.True(t, errors.As(err, &se))
    assert.Equal(t, http.StatusBadRequest, se.Status)
    assert.Equal(t, 1, hits)
}

func TestAuthHeaders(t *testing.T) {
    var gotAuth string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotAuth = r.Header.Get("Authorization")
        w.Write([]byte(`{"issues":[]}`))
    }))
    defer srv.Close()

    cloud := testClient(t, srv.URL, config.TargetCloud)
    _, _, err := cloud.NextPage(context.Background(), "project = SB", "")
    require.NoError(t, err)
    req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
    req.SetBasicAuth("bot@example.com", "api-token")
    assert.Equal(t, req.Header.Get("Authorization"), gotAuth)

    dc := testClient(t, srv.URL, config.TargetDC)
    _, _, err = dc.NextPage(context.Background(), "project = SB", "")
    require.NoError(t, err)
    assert.Equal(t, "Bearer pat-token", gotAuth)
}

func TestRetryAfterParsing(t *testing.T) {
    assert.Equal(t, 3*time.Second, retryAfter("3"))
    assert.Equal(t, time.Duration(0), retryAfter(""))
    assert.Equal(t, time.Duration(0), retryAfter("garbage"))
    future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
    got := retryAfter(future)
    assert.Greater(t, got, 5*time.Second)
}
